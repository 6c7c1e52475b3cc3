package http

import (
	"github.com/gin-gonic/gin"

	appsvc "finquest-server/internal/app"
	"finquest-server/internal/bootstrap"
	"finquest-server/internal/cache"
	"finquest-server/internal/platform/rabbitmq"
	"finquest-server/internal/repository"
	"finquest-server/internal/transport/http/handler"
	"finquest-server/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(app.Logger))
	maxUpload := int64(cfg.Upload.MaxBytes)
	if maxUpload > 0 {
		router.MaxMultipartMemory = maxUpload
	}

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.DB)
	txRepo := repository.NewTransactionRepository(app.DB)
	questRepo := repository.NewQuestRepository(app.DB)

	userService := appsvc.NewUserService(
		userRepo,
		app.Profiles,
		rabbitmq.NewEventPublisher(app.MQConn, cfg.RabbitMQ.EventQueue),
		app.Logger,
		cfg.Auth.JWTSecret,
		cfg.JWTExpiration(),
	)
	txService := appsvc.NewTransactionService(
		txRepo,
		userRepo,
		questRepo,
		cache.NewTransactionCache(app.Redis, cfg.TransactionCacheTTL()),
		app.Logger,
		cfg.Location(),
	)
	questService := appsvc.NewQuestService(questRepo)

	Register(router, Handlers{
		User:        handler.NewUserHandler(userService, maxUpload),
		Transaction: handler.NewTransactionHandler(txService, cfg.Location()),
		Quest:       handler.NewQuestHandler(questService),
	}, cfg.Auth.JWTSecret)

	return router
}

type Handlers struct {
	User        *handler.UserHandler
	Transaction *handler.TransactionHandler
	Quest       *handler.QuestHandler
}

// Register mounts the user, transaction and quest routes on router.
func Register(router gin.IRouter, h Handlers, jwtSecret string) {
	router.POST("/join", h.User.Join)
	router.POST("/login", h.User.Login)
	router.GET("/users", h.User.List)
	router.DELETE("/:userId", h.User.Delete)
	router.PUT("/nickname/:userId", h.User.UpdateProfile)
	router.PUT("/email/:userId", h.User.UpdateEmail)
	router.PUT("/password/:userId", h.User.UpdatePassword)

	auth := middleware.AuthJWT(jwtSecret)

	txGroup := router.Group("/transactions", auth)
	txGroup.POST("", h.Transaction.Save)
	txGroup.GET("", h.Transaction.ListMine)
	txGroup.GET("/category/:category", h.Transaction.ListByCategory)
	txGroup.GET("/type/:type", h.Transaction.ListByType)
	txGroup.GET("/quest/:questId", h.Transaction.ListByQuest)

	questGroup := router.Group("/quests", auth)
	questGroup.POST("", h.Quest.Create)
	questGroup.GET("", h.Quest.List)
	questGroup.GET("/:questId", h.Quest.Get)
}
