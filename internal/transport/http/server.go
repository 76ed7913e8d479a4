package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"contextchat/internal/ai"
	appsvc "contextchat/internal/app"
	"contextchat/internal/bootstrap"
	"contextchat/internal/cache"
	"contextchat/internal/platform/rabbitmq"
	"contextchat/internal/repository"
	"contextchat/internal/transport/http/handler"
	"contextchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	projectRepo := repository.NewProjectRepository(app.MySQL)
	conversationRepo := repository.NewConversationRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	fileRepo := repository.NewFileUploadRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	fileService := appsvc.NewFileService(fileRepo, app.Storage, app.Log)
	chatService := appsvc.NewChatService(
		projectRepo,
		conversationRepo,
		messageRepo,
		fileRepo,
		fileService,
		historyCache,
		app.LLM,
		ai.ChatConfig{
			BaseURL:     app.Config.LLM.BaseURL,
			APIKey:      app.Config.LLM.APIKey,
			Model:       app.Config.LLM.DefaultModel,
			MaxTokens:   app.Config.LLM.MaxTokens,
			Temperature: app.Config.LLM.Temperature,
		},
		app.Log,
	)
	jobPublisher := rabbitmq.NewJobPublisher(app.MQConn, app.Config.RabbitMQ.FileProcessQueue)

	chatHandler := handler.NewChatHandler(chatService)
	fileHandler := handler.NewFileHandler(fileService, jobPublisher)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.ServiceAuth(app.Config.Auth.ServiceJWTSecret))
	v1.POST("/chat", chatHandler.Send)
	v1.GET("/chat/history", chatHandler.History)
	v1.POST("/files/process", fileHandler.Process)
	v1.GET("/files", fileHandler.List)

	return router
}
