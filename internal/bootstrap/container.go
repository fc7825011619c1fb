package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-reading-tutor-be/internal/config"
	"ai-reading-tutor-be/internal/controller"
	"ai-reading-tutor-be/internal/pkg/logger"
	"ai-reading-tutor-be/internal/repository/implementation"
	"ai-reading-tutor-be/internal/repository/memory"
	"ai-reading-tutor-be/internal/service"
	"ai-reading-tutor-be/pkg/embedding"
	"ai-reading-tutor-be/pkg/llm/factory"

	pktNats "ai-reading-tutor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const turnCompletedTopic = "tutor.turn.completed"

type Container struct {
	// Controllers
	TutorController controller.ITutorController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 0. System Logger
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 1. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 4. Repositories
	articleRepo := implementation.NewArticleRepository(db)
	chunkRepo := implementation.NewArticleChunkRepository(db)
	historyRepo := implementation.NewChatHistoryRepository(rdb)
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Tutor.SessionTTLMins) * time.Minute)

	// 5. Services
	publisherService := service.NewPublisherService(turnCompletedTopic, pubSub)
	eventLogger := logger.NewIsolatedLogger("logs/turn_events.log")
	consumerService := service.NewConsumerService(pubSub, turnCompletedTopic, natsPub, eventLogger)

	turnAuditService := service.NewTurnAuditService(natsSub, eventLogger)
	if err := turnAuditService.Start(); err != nil {
		log.Printf("[WARN] Failed to start turn audit consumer: %v", err)
	}

	tutorService := service.NewTutorService(
		cfg,
		llmProvider,
		embeddingProvider,
		articleRepo,
		chunkRepo,
		historyRepo,
		sessionRepo,
		publisherService,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		TutorController: controller.NewTutorController(tutorService),
		ConsumerService: consumerService,
	}
}
