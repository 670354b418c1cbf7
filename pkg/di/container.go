package di

import (
	"chat-relay-demo/backend/internal/repository"
	"chat-relay-demo/backend/internal/service"
	"chat-relay-demo/backend/internal/ws"
	"chat-relay-demo/backend/pkg/cache"
	"chat-relay-demo/backend/pkg/config"
	"chat-relay-demo/backend/pkg/logger"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application. Everything is
// constructed once at process start and passed by handle into the router;
// there are no ambient singletons beyond the global logger.
type Container struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Cache  *cache.Client

	MessageRepo repository.MessageRepository
	APIKeyRepo  repository.APIKeyRepository

	Hub            *ws.Hub
	MessageService *service.MessageService
	APIKeyService  *service.APIKeyService
}

// New wires the application dependency graph on top of an open database
// handle.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) *Container {
	var cacheClient *cache.Client
	if cfg.Redis.Enabled {
		cacheClient = cache.New(cfg.Redis.Addr)
	}

	messageRepo := repository.NewGormMessageRepository(db)
	apiKeyRepo := repository.NewGormAPIKeyRepository(db)

	hub := ws.NewHub(log)
	messageService := service.NewMessageService(messageRepo, hub, log)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, cacheClient, cfg.Redis.TTL, log)

	return &Container{
		DB:             db,
		Logger:         log,
		Cache:          cacheClient,
		MessageRepo:    messageRepo,
		APIKeyRepo:     apiKeyRepo,
		Hub:            hub,
		MessageService: messageService,
		APIKeyService:  apiKeyService,
	}
}
