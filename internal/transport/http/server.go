package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"faqdesk/internal/ai"
	appsvc "faqdesk/internal/app"
	"faqdesk/internal/bootstrap"
	"faqdesk/internal/cache"
	"faqdesk/internal/platform/rabbitmq"
	"faqdesk/internal/repository"
	"faqdesk/internal/transport/http/handler"
	"faqdesk/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	faqRepo := repository.NewFaqRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	turnRepo := repository.NewTurnRepository(app.MySQL)
	activityRepo := repository.NewActivityRepository(app.MySQL)

	faqCache := cache.NewFaqListCache(
		app.Redis,
		time.Duration(app.Config.Redis.FaqListTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.FaqDirtyTTLSeconds)*time.Second,
	)
	proposalCache := cache.NewProposalCache(
		app.Redis,
		time.Duration(app.Config.Redis.ProposalTTLSeconds)*time.Second,
	)
	activityPublisher := rabbitmq.NewActivityPublisher(app.MQConn, app.Config.RabbitMQ.ActivityPersistQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	activityService := appsvc.NewActivityService(activityPublisher, activityRepo)
	faqService := appsvc.NewFaqService(faqRepo, activityService, faqCache)
	assetService := appsvc.NewAssetService(app.MinIO, app.Config.MinIO.Bucket, app.Config.AssetBaseURL())
	applyService := appsvc.NewApplyService(faqService, assetService)
	chatService := appsvc.NewChatService(
		sessionRepo,
		turnRepo,
		proposalCache,
		faqService,
		activityService,
		applyService,
		ai.NewOpenAICompatibleClient(),
		ai.ChatConfig{
			BaseURL: app.Config.LLM.BaseURL,
			APIKey:  app.Config.LLM.APIKey,
			Model:   app.Config.LLM.Model,
		},
		app.Config.Assistant.MaxContextTurns,
		app.Config.Assistant.MaxContextFaqs,
	)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	faqHandler := handler.NewFaqHandler(faqService)
	chatHandler := handler.NewChatHandler(chatService)
	assetHandler := handler.NewAssetHandler(assetService, chatService)
	activityHandler := handler.NewActivityHandler(activityService)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	faqGroup := v1.Group("/faqs")
	faqGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	faqGroup.GET("", faqHandler.List)
	faqGroup.GET("/categories", faqHandler.Categories)
	faqGroup.POST("", middleware.RequireEditor(), faqHandler.Create)
	faqGroup.PUT("/:id", middleware.RequireEditor(), faqHandler.Update)
	faqGroup.DELETE("/:id", middleware.RequireEditor(), faqHandler.Delete)
	faqGroup.DELETE("/categories/:name", middleware.RequireEditor(), faqHandler.DeleteCategory)
	faqGroup.POST("/categories/rename", middleware.RequireEditor(), faqHandler.RenameCategory)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret), middleware.RequireEditor())
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.GET("/sessions/:id/turns", chatHandler.GetTurns)
	chatGroup.POST("/sessions/:id/turns", chatHandler.SendTurn)
	chatGroup.POST("/sessions/:id/proposal/confirm", chatHandler.ConfirmProposal)
	chatGroup.POST("/sessions/:id/proposal/decline", chatHandler.DeclineProposal)

	assetGroup := v1.Group("/assets")
	assetGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret), middleware.RequireEditor())
	assetGroup.POST("", assetHandler.Upload)

	activityGroup := v1.Group("/activity")
	activityGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret), middleware.RequireEditor())
	activityGroup.GET("", activityHandler.List)

	userGroup := v1.Group("/users")
	userGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret), middleware.RequireAdmin())
	userGroup.GET("", userHandler.List)
	userGroup.PUT("/:id/role", userHandler.UpdateRole)
	userGroup.DELETE("/:id", userHandler.Delete)

	return router
}
