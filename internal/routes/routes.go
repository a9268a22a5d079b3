package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/config"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/handler"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/middleware"
	pkgjwt "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/jwt"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth      *handler.AuthHandler
	Content   *handler.ContentHandler
	Search    *handler.SearchHandler
	Dashboard *handler.DashboardHandler
	BrandTest *handler.BrandTestHandler
	Backup    *handler.BackupHandler
}

// Setup wires middleware and mounts the /api/v1 surface
func Setup(cfg *config.Config, tokens *pkgjwt.Manager, h Handlers) *gin.Engine {
	if cfg.Server.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.PrometheusMetrics())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalJWT(tokens))
	{
		auth := api.Group("/auth")
		auth.Use(middleware.JWTAuth(tokens))
		{
			auth.GET("/me", h.Auth.Me)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		api.GET("/content/:type", h.Content.List)
		api.GET("/content/:type/:id", h.Content.Get)
		api.POST("/content/:type", h.Content.Create)
		api.PUT("/content/:type/:id", h.Content.Update)
		api.DELETE("/content/:type/:id", h.Content.Delete)

		api.POST("/search", h.Search.Search)
		api.GET("/search", h.Search.SearchGet)
		api.GET("/search/suggestions", h.Search.Suggestions)
		api.GET("/search/history", h.Search.History)
		api.GET("/search/recent", h.Search.RecentQueries)
		api.GET("/search/saved", h.Search.ListSavedSearches)
		api.POST("/search/saved", h.Search.SaveSearch)
		api.DELETE("/search/saved/:id", h.Search.DeleteSavedSearch)
		api.POST("/search/saved/:id/execute", h.Search.ExecuteSavedSearch)

		api.GET("/dashboard/metrics", h.Dashboard.GetMetrics)
		api.POST("/dashboard/metrics/:action", h.Dashboard.UpdateCounter)
		api.GET("/dashboard/activities", h.Dashboard.ListActivities)
		api.POST("/dashboard/activities", h.Dashboard.RecordActivity)

		api.POST("/brand-tests", h.BrandTest.Create)
		api.GET("/brand-tests", h.BrandTest.List)
		api.POST("/brand-tests/compare", h.BrandTest.Compare)
		api.GET("/brand-tests/:id", h.BrandTest.Get)
		api.POST("/brand-tests/:id/start", h.BrandTest.Start)
		api.POST("/brand-tests/:id/complete", h.BrandTest.Complete)
		api.POST("/brand-tests/:id/analyze", h.BrandTest.Analyze)

		api.POST("/backups", h.Backup.Create)
		api.GET("/backups", h.Backup.List)
		api.GET("/backups/:id/verify", h.Backup.Verify)
		api.POST("/exports", h.Backup.Export)

		// destructive operations require an administrator token
		admin := api.Group("")
		admin.Use(middleware.JWTAuth(tokens), middleware.RequireAdmin())
		{
			admin.POST("/backups/:id/restore", h.Backup.Restore)
			admin.DELETE("/backups/:id", h.Backup.Delete)
			admin.DELETE("/dashboard/data", h.Dashboard.ClearData)
		}
	}

	return r
}
