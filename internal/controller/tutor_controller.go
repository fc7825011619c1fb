package controller

import (
	"bufio"
	"context"

	"ai-reading-tutor-be/internal/dto"
	"ai-reading-tutor-be/internal/pkg/serverutils"
	"ai-reading-tutor-be/internal/service"
	"ai-reading-tutor-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type ITutorController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type tutorController struct {
	tutorService service.ITutorService
}

func NewTutorController(tutorService service.ITutorService) ITutorController {
	return &tutorController{
		tutorService: tutorService,
	}
}

func (c *tutorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tutor/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("chat", c.Chat)
	h.Delete("history", c.ClearHistory)
}

// Chat streams one tutor turn over Server-Sent Events. The stream
// always terminates with a done event; failures surface as an error
// event first, never as a broken connection.
func (c *tutorController) Chat(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The user context is canceled by fiber when the client disconnects;
	// capture it before the handler returns
	reqCtx := ctx.UserContext()
	traceId := uuid.NewString()

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		sink := func(ev stream.Event) {
			// A write failure means the client is gone; the canceled
			// context stops the workflow at the next node boundary
			_ = stream.WriteSSE(w, ev)
		}

		turnCtx := stream.NewContext(reqCtx, sink, traceId)

		_, err := c.tutorService.Chat(turnCtx, userId, &req)
		if err != nil && turnCtx.Err() == nil {
			_ = stream.WriteSSE(w, stream.Event{
				Name: stream.EventError,
				Data: map[string]string{"message": "The tutor could not complete this turn. Please try again."},
			})
		}

		_ = stream.WriteSSE(w, stream.Event{
			Name: stream.EventDone,
			Data: map[string]string{"traceId": traceId},
		})
	}))

	return nil
}

func (c *tutorController) ClearHistory(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	if err := c.tutorService.ClearHistory(context.Background(), userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear tutor history", nil))
}

// currentUserId reads the authenticated user id set by the JWT
// middleware. Tokens without a usable user_id claim are rejected.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
	}
	return userId, nil
}
