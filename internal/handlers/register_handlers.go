package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/posting-engine/internal/core/domain"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/middleware"
	"github.com/corebank/posting-engine/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	dbPool *pgxpool.Pool,
) {
	registerCustomValidators()

	r.GET("/health", healthHandler(cfg, dbPool))
	r.GET("/metrics", middleware.MetricsHandler())

	setupAPIV1Routes(r, cfg, services)
}

// registerCustomValidators hooks domain enum checks into gin's binding engine.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("direction", func(fl validator.FieldLevel) bool {
		switch domain.EntryDirection(fl.Field().String()) {
		case domain.Debit, domain.Credit:
			return true
		}
		return false
	})
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1",
		middleware.ServiceTokenMiddleware(cfg.ServiceTokenSecret),
		middleware.CallerIdentityMiddleware(),
	)

	registerPostingRoutes(v1, services)
	registerAccountRoutes(v1, services)
}

func registerPostingRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newPostingHandler(services)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.stageEntry)
		entries.GET("/:reference", h.listEntries)
	}

	batches := rg.Group("/batches")
	{
		batches.POST("", h.sealBatch)
		batches.GET("/:reference", h.getBatch)
		batches.POST("/:reference/resolution", h.resolveBatch)
	}

	rg.POST("/expansions", h.expand)
}

func registerAccountRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newAccountHandler(services)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/resolution", h.resolveAccount)
		accounts.GET("/:id", h.getAccount)
		accounts.GET("/:id/ledger", h.listLedger)
	}
}

// healthHandler reports liveness; with the DB check enabled it also pings the
// pool so load balancers observe real readiness.
func healthHandler(cfg *config.Config, dbPool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.EnableDBCheck && dbPool != nil {
			if err := dbPool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
