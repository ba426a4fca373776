// Package router sets up the API routes of the HTTP server.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/api/handler"
	"github.com/verustcode/reportforge/internal/api/middleware"
	"github.com/verustcode/reportforge/internal/config"
	"github.com/verustcode/reportforge/internal/database"
	"github.com/verustcode/reportforge/internal/report/exporter"
	"github.com/verustcode/reportforge/internal/store"
)

// Dependencies are the components the routes are served from
type Dependencies struct {
	Flavors handler.FlavorProvider
	Exports *exporter.ExportManager
	// Store is nil when the render archive is disabled; the /renders routes are then absent
	Store store.Store
}

// Setup configures all API routes
func Setup(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	r.Use(otelgin.Middleware(consts.ServiceName))

	var checkDB func() error
	if deps.Store != nil {
		checkDB = database.HealthCheck
	}
	r.GET("/health", handler.NewHealthHandler(checkDB).Health)

	v1 := r.Group("/api/v1")

	normalizeHandler := handler.NewNormalizeHandler()
	v1.POST("/presence", normalizeHandler.Presence)
	v1.POST("/markdown", normalizeHandler.Markdown)
	v1.POST("/title", normalizeHandler.Title)

	flavorHandler := handler.NewFlavorHandler(deps.Flavors)
	renderHandler := handler.NewRenderHandler(deps.Flavors, deps.Exports, deps.Store, cfg.Render.SaveRenders)

	v1.GET("/formats", renderHandler.Formats)

	flavors := v1.Group("/flavors")
	{
		flavors.GET("", flavorHandler.ListFlavors)
		flavors.GET("/:id", flavorHandler.GetFlavor)
		flavors.POST("/:id/numbers", flavorHandler.Numbers)
		flavors.POST("/:id/render", renderHandler.Render)
	}

	if deps.Store != nil {
		renders := v1.Group("/renders")
		{
			renders.GET("", renderHandler.ListRenders)
			renders.GET("/stats", renderHandler.RenderStats)
			renders.GET("/:id", renderHandler.GetRender)
			renders.DELETE("/:id", renderHandler.DeleteRender)
			renders.GET("/:id/export", renderHandler.ExportRender)
		}
	}
}
