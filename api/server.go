// Package api exposes the allocation engine over HTTP. The engine stays
// pure; everything here is request plumbing: parsing, error mapping, history
// recording and event publication.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/transitflow/busalloc/core/allocation"
	"github.com/transitflow/busalloc/core/counts"
	"github.com/transitflow/busalloc/core/history"
	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/infra/logger"
	"github.com/transitflow/busalloc/internal/eventbus"
)

// ResultPublisher forwards allocation results to downstream consumers, e.g.
// the MQTT result topic.
type ResultPublisher interface {
	PublishResult(res model.AllocationResult) error
}

// Server hosts the HTTP API.
type Server struct {
	engine *allocation.Engine
	source counts.Source
	store  history.Store
	bus    eventbus.EventBus
	pub    ResultPublisher
	token  string
	log    logger.Logger
}

// NewServer wires the engine and its collaborators into a Server. The store,
// bus and publisher may be nil; the corresponding features are then
// disabled. A non-empty token protects the history endpoint with
// "Bearer <token>" authorization.
func NewServer(engine *allocation.Engine, source counts.Source, store history.Store, bus eventbus.EventBus, pub ResultPublisher, token string, log logger.Logger) *Server {
	if source == nil {
		source = counts.StaticSource{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Server{engine: engine, source: source, store: store, bus: bus, pub: pub, token: token, log: log}
}

// Router builds the gin router with all endpoints registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := r.Group("/api")
	api.POST("/allocation", s.allocate)
	api.GET("/routes", s.routes)
	api.GET("/allocations", s.allocations)
	return r
}
