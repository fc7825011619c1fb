package controller

import (
	"context"
	"net/http/httptest"
	"testing"

	"ai-reading-tutor-be/internal/dto"
	"ai-reading-tutor-be/pkg/tutor"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubTutorService struct {
	clearCalls int
}

func (s *stubTutorService) Chat(_ context.Context, _ uuid.UUID, _ *dto.ChatRequest) (*tutor.Final, error) {
	return &tutor.Final{}, nil
}

func (s *stubTutorService) ClearHistory(_ context.Context, _ uuid.UUID) error {
	s.clearCalls++
	return nil
}

func newTestApp(userId interface{}) (*fiber.App, *stubTutorService) {
	svc := &stubTutorService{}
	ctrl := NewTutorController(svc)

	app := fiber.New()
	app.Use(func(ctx *fiber.Ctx) error {
		if userId != nil {
			ctx.Locals("user_id", userId)
		}
		return ctx.Next()
	})
	app.Post("/chat", ctrl.Chat)
	app.Delete("/history", ctrl.ClearHistory)
	return app, svc
}

func TestHandlersRejectUnusableUserIdClaim(t *testing.T) {
	tests := []struct {
		name   string
		userId interface{}
	}{
		{name: "missing claim", userId: nil},
		{name: "non-string claim", userId: 42},
		{name: "non-uuid claim", userId: "not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, svc := newTestApp(tt.userId)

			resp, err := app.Test(httptest.NewRequest("DELETE", "/history", nil))
			assert.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Zero(t, svc.clearCalls)

			resp, err = app.Test(httptest.NewRequest("POST", "/chat", nil))
			assert.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestClearHistoryAcceptsValidUserId(t *testing.T) {
	app, svc := newTestApp(uuid.NewString())

	resp, err := app.Test(httptest.NewRequest("DELETE", "/history", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, svc.clearCalls)
}
