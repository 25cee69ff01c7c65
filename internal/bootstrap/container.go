package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/handler"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/internal/websocket"
	"ai-docchat-be/pkg/cache"
	"ai-docchat-be/pkg/extract"
	"ai-docchat-be/pkg/llm/factory"
	"ai-docchat-be/pkg/ocr"
	"ai-docchat-be/pkg/pdftext"

	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RoomController controller.IRoomController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ChatHandler  *handler.ChatHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

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

	// Extraction clients share one namespaced content cache
	contentCache := cache.New(rdb, cfg.App.ServiceName, cfg.App.ServiceVersion)
	ocrClient := ocr.NewClient(
		cfg.Extract.OCRBaseURL,
		contentCache,
		time.Duration(cfg.Extract.CacheTTLDays)*24*time.Hour,
	)
	pdfTextClient := pdftext.NewClient(cfg.Extract.PDFTextBaseURL)
	extractPipeline := extract.NewPipeline(ocrClient, pdfTextClient, sysLogger)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GroqAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// NATS (optional external event mirror)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(constant.RoomActivityTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.RoomActivityTopicName,
		uowFactory,
		natsPub,
	)

	roomService := service.NewRoomService(uowFactory)
	historyService := service.NewHistoryService(uowFactory)
	uploadStore := service.NewUploadStore("uploads")

	chatService := service.NewChatService(
		uowFactory,
		roomService,
		historyService,
		extractPipeline,
		llmProvider,
		publisherService,
		wsHub,
		uploadStore,
		sysLogger,
	)

	chatHandler := handler.NewChatHandler(chatService, wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		RoomController:  controller.NewRoomController(roomService),
		ConsumerService: consumerService,
		ChatHandler:     chatHandler,
		WebSocketHub:    wsHub,
	}
}
