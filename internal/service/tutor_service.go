package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"ai-reading-tutor-be/internal/config"
	"ai-reading-tutor-be/internal/dto"
	"ai-reading-tutor-be/internal/entity"
	pkgLogger "ai-reading-tutor-be/internal/pkg/logger"
	"ai-reading-tutor-be/internal/repository/contract"
	"ai-reading-tutor-be/internal/repository/memory"
	"ai-reading-tutor-be/internal/repository/specification"
	"ai-reading-tutor-be/pkg/embedding"
	"ai-reading-tutor-be/pkg/genui"
	"ai-reading-tutor-be/pkg/llm"
	"ai-reading-tutor-be/pkg/retrieval"
	"ai-reading-tutor-be/pkg/stream"
	"ai-reading-tutor-be/pkg/tutor"

	"github.com/google/uuid"
)

// ITutorService defines the tutor service interface
type ITutorService interface {
	// Chat runs one tutor turn. The context may carry a stream channel;
	// progress events are emitted through it as the workflow advances.
	Chat(ctx context.Context, userId uuid.UUID, request *dto.ChatRequest) (*tutor.Final, error)
	ClearHistory(ctx context.Context, userId uuid.UUID) error
}

type tutorService struct {
	workflow         *tutor.Workflow
	articleRepo      contract.ArticleRepository
	historyRepo      contract.ChatHistoryRepository
	sessionRepo      *memory.SessionRepository
	publisherService IPublisherService
	historyWindow    int
	sysLogger        pkgLogger.ILogger
	llmLogger        *log.Logger
}

// NewTutorService assembles the workflow and its retrieval backend.
func NewTutorService(
	cfg *config.Config,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	articleRepo contract.ArticleRepository,
	chunkRepo contract.ArticleChunkRepository,
	historyRepo contract.ChatHistoryRepository,
	sessionRepo *memory.SessionRepository,
	publisherService IPublisherService,
	sysLogger pkgLogger.ILogger,
) ITutorService {
	llmLogger := initLLMLogger()

	retriever := retrieval.NewService(embeddingProvider, chunkRepo, articleRepo, llmLogger)
	workflow := tutor.NewWorkflow(llmProvider, retriever, llmLogger)

	return &tutorService{
		workflow:         workflow,
		articleRepo:      articleRepo,
		historyRepo:      historyRepo,
		sessionRepo:      sessionRepo,
		publisherService: publisherService,
		historyWindow:    cfg.Tutor.HistoryWindow,
		sysLogger:        sysLogger,
		llmLogger:        llmLogger,
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_tutor.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-TUTOR] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (ts *tutorService) Chat(ctx context.Context, userId uuid.UUID, request *dto.ChatRequest) (*tutor.Final, error) {
	state := ts.buildState(ctx, userId, request)

	final, err := ts.workflow.Run(ctx, state)
	if err != nil {
		return nil, err
	}

	ts.persistTurn(userId, request.UserMessage, final)
	ts.updateSession(userId, state)
	ts.publishTurnCompleted(ctx, userId, state, final)

	return final, nil
}

func (ts *tutorService) ClearHistory(ctx context.Context, userId uuid.UUID) error {
	ts.sessionRepo.Delete(userId.String())
	return ts.historyRepo.Clear(ctx, userId)
}

// buildState assembles the workflow input from the request, the stored
// session and the server-side history.
func (ts *tutorService) buildState(ctx context.Context, userId uuid.UUID, request *dto.ChatRequest) *tutor.State {
	mode := tutor.Mode(request.Mode)
	if mode == "" {
		mode = tutor.ModeTutor
	}

	var messages []tutor.Message
	if len(request.Messages) > 0 {
		// Client-supplied history wins over the stored one
		messages = make([]tutor.Message, 0, len(request.Messages))
		for _, m := range request.Messages {
			messages = append(messages, tutor.Message{Role: m.Role, Content: m.Content})
		}
	} else {
		turns, err := ts.historyRepo.Load(ctx, userId, ts.historyWindow)
		if err != nil {
			ts.sysLogger.Warn("TUTOR", "Failed to load chat history", map[string]interface{}{
				"userId": userId.String(),
				"error":  err.Error(),
			})
		}
		messages = make([]tutor.Message, 0, len(turns))
		for _, t := range turns {
			messages = append(messages, tutor.Message{Role: t.Role, Content: t.Content})
		}
	}

	currentTopic := request.CurrentTopic
	masteryLevel := request.MasteryLevel
	if sess, found := ts.sessionRepo.Get(userId.String()); found {
		if currentTopic == "" {
			currentTopic = sess.CurrentTopic
		}
		if masteryLevel == 0 {
			masteryLevel = sess.MasteryLevel
		}
	}

	var reader *tutor.ReaderContext
	if request.Context != nil {
		reader = &tutor.ReaderContext{
			Selection:      request.Context.Selection,
			CurrentContent: request.Context.CurrentContent,
		}
	}

	return &tutor.State{
		Messages:     messages,
		UserMessage:  request.UserMessage,
		UserId:       userId,
		ArticleIds:   ts.resolveScope(ctx, userId, request),
		CollectionId: request.CollectionId,
		CurrentTopic: currentTopic,
		MasteryLevel: masteryLevel,
		Mode:         mode,
		Reader:       reader,
	}
}

// resolveScope drops requested article ids the user does not own. When
// a collection filter is set the check narrows to that collection, so a
// stale client scope cannot pull material from outside it.
func (ts *tutorService) resolveScope(ctx context.Context, userId uuid.UUID, request *dto.ChatRequest) []uuid.UUID {
	if len(request.ArticleIds) == 0 {
		return nil
	}

	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
		specification.ByIDs{IDs: request.ArticleIds},
	}
	if request.CollectionId != nil {
		specs = append(specs, specification.InCollection{CollectionID: *request.CollectionId})
	}

	articles, err := ts.articleRepo.FindAll(ctx, specs...)
	if err != nil {
		ts.sysLogger.Warn("TUTOR", "Article scope check failed", map[string]interface{}{
			"userId": userId.String(),
			"error":  err.Error(),
		})
		return request.ArticleIds
	}

	ids := make([]uuid.UUID, len(articles))
	for i, a := range articles {
		ids[i] = a.Id
	}
	return ids
}

func (ts *tutorService) persistTurn(userId uuid.UUID, userMessage string, final *tutor.Final) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	err := ts.historyRepo.Append(ctx, userId,
		entity.ChatTurn{Role: "user", Content: userMessage, CreatedAt: now},
		entity.ChatTurn{Role: "assistant", Content: assistantTurnContent(final), CreatedAt: now.Add(time.Second)},
	)
	if err != nil {
		ts.sysLogger.Warn("TUTOR", "Failed to persist chat turn", map[string]interface{}{
			"userId": userId.String(),
			"error":  err.Error(),
		})
	}
}

// assistantTurnContent flattens the terminal payload into the text form
// stored in history. Structured payloads keep a short marker so later
// turns know what was generated.
func assistantTurnContent(final *tutor.Final) string {
	if final == nil || final.UI == nil {
		return ""
	}
	if final.UI.Type == genui.KindExplanation {
		return final.UI.Markdown
	}
	marker := "[generated " + string(final.UI.Type) + "]"
	if final.UI.Title != "" {
		marker += " " + final.UI.Title
	}
	return marker
}

func (ts *tutorService) updateSession(userId uuid.UUID, state *tutor.State) {
	sess, found := ts.sessionRepo.Get(userId.String())
	if !found {
		sess = &memory.TutorSession{
			ID:     userId.String(),
			UserID: userId.String(),
		}
	}
	if state.CurrentTopic != "" {
		sess.CurrentTopic = state.CurrentTopic
	}
	sess.MasteryLevel = state.MasteryLevel
	sess.LastStep = string(state.NextStep)
	ts.sessionRepo.Save(sess)
}

func (ts *tutorService) publishTurnCompleted(ctx context.Context, userId uuid.UUID, state *tutor.State, final *tutor.Final) {
	payloadKind := ""
	sourceCount := 0
	if final != nil {
		if final.UI != nil {
			payloadKind = string(final.UI.Type)
		}
		sourceCount = len(final.Sources)
	}

	err := ts.publisherService.Publish(dto.TurnCompletedMessage{
		UserId:      userId,
		TraceId:     stream.TraceID(ctx),
		Intent:      string(state.NextStep),
		PayloadKind: payloadKind,
		SourceCount: sourceCount,
	})
	if err != nil {
		ts.sysLogger.Warn("TUTOR", "Failed to publish turn-completed event", map[string]interface{}{
			"userId": userId.String(),
			"error":  err.Error(),
		})
	}
}
