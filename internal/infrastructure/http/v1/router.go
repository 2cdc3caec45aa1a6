package v1

import (
	"github.com/gin-gonic/gin"

	"procura/internal/domain/catalogs/item"
	"procura/internal/domain/documents/receiving"
	"procura/internal/domain/documents/srequest"
	"procura/internal/infrastructure/http/v1/handlers"
	"procura/internal/infrastructure/http/v1/middleware"
	"procura/pkg/logger"
)

// RouterConfig holds the dependencies of the HTTP API.
type RouterConfig struct {
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator

	// DB backs the readiness probe. Nil disables /health/ready and /health/info.
	DB handlers.Pinger

	Items       handlers.CRUDService[*item.Item]
	Movements   handlers.MovementLister
	Receivings  handlers.CRUDService[*receiving.Receiving]
	SRequests   handlers.CRUDService[*srequest.ServiceRequest]
	History     handlers.AuditHistory
	Idempotency middleware.IdempotencyStore

	// WriteRoles, when set, restricts mutating routes to users holding one of them.
	WriteRoles []string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Order matters: ErrorHandler must wrap Recovery to render recovered panics.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	health := router.Group("/health")
	{
		h := handlers.NewHealthHandler(cfg.DB)
		health.GET("/live", h.Live)
		if cfg.DB != nil {
			health.GET("/ready", h.Ready)
			health.GET("/info", h.Info)
		}
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	var guard []gin.HandlerFunc
	if len(cfg.WriteRoles) > 0 {
		guard = append(guard, middleware.RequireRole(cfg.WriteRoles...))
	}

	base := handlers.NewBaseHandler()

	itemHandler := handlers.NewItemHandler(base, cfg.Items, cfg.Movements)
	items := api.Group("/items")
	RegisterCRUDRoutes(items, itemHandler, guard...)
	items.GET("/:id/movements", itemHandler.Movements)

	RegisterCRUDRoutes(api.Group("/receivings"),
		handlers.NewReceivingHandler(base, cfg.Receivings, cfg.History), guard...)
	RegisterCRUDRoutes(api.Group("/s-requests"),
		handlers.NewServiceRequestHandler(base, cfg.SRequests, cfg.History), guard...)

	return router
}
