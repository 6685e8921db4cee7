package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/chernandez90/InsurancePortal/internal/config"
	"github.com/chernandez90/InsurancePortal/internal/handler"
	"github.com/chernandez90/InsurancePortal/internal/hub"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/middleware"
	"github.com/chernandez90/InsurancePortal/pkg/response"
)

// routes is implemented by every API handler.
type routes interface {
	RegisterRoutes(r *gin.Engine)
}

func newAPIRouter(cfg *config.Config, l zerolog.Logger, handlers ...routes) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinMiddleware(l))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	if cfg.Server.MaxUploadSize > 0 {
		r.MaxMultipartMemory = cfg.Server.MaxUploadSize
	}

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	for _, h := range handlers {
		h.RegisterRoutes(r)
	}
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})
	return r
}

// corsConfig allows the configured origins. An empty list or "*" allows any
// origin without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func newRealtimeRouter(cfg *config.Config, l zerolog.Logger, h *hub.Hub, ws *handler.WSHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(log.HTTPMiddleware(l))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.Response{
			Success: true,
			Data: map[string]any{
				"status": "ok",
				"time":   time.Now().UTC(),
				"hub":    h.Stats(),
			},
		})
	}).Methods(http.MethodGet)

	ws.RegisterRoutes(r, cfg.Realtime.Path)
	return r
}
