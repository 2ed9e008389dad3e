package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pbaille/cookbook/internal/catalog"
	"github.com/pbaille/cookbook/internal/domain"
	"github.com/pbaille/cookbook/internal/events"
	"github.com/pbaille/cookbook/internal/fetcher"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Importer turns a page URL into an unsaved recipe
type Importer func(ctx context.Context, url string) (*domain.Recipe, error)

// Server handles HTTP requests for the recipe catalog API
type Server struct {
	svc      *catalog.Service
	hub      *events.Hub
	db       Pinger
	importer Importer
	log      *zap.Logger

	addr            string
	shutdownTimeout time.Duration
}

// Option configures a Server
type Option func(*Server)

func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithPinger makes /health check the database
func WithPinger(p Pinger) Option {
	return func(s *Server) { s.db = p }
}

// WithImporter replaces the schema.org page importer used by /import
func WithImporter(imp Importer) Option {
	return func(s *Server) { s.importer = imp }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// New creates a new API server
func New(svc *catalog.Service, hub *events.Hub, opts ...Option) *Server {
	s := &Server{
		svc:             svc,
		hub:             hub,
		importer:        fetcher.FetchRecipe,
		log:             zap.NewNop(),
		addr:            ":8080",
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin router with every route registered
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), withCORS())

	router.GET("/health", s.health)

	// Recipes
	router.GET("/recipes", s.listRecipes)
	router.POST("/recipes", s.createRecipe)
	router.GET("/recipes/:id", s.getRecipe)
	router.PUT("/recipes/:id", s.updateRecipe)
	router.DELETE("/recipes/:id", s.deleteRecipe)
	router.POST("/recipes/:id/favorite", s.toggleFavorite)
	router.GET("/favorites", s.listFavorites)

	// Vocabulary
	router.GET("/tags", s.usedTags)
	router.GET("/categories", s.categories)
	router.GET("/presets", s.presets)

	router.POST("/draw", s.draw)
	router.GET("/stats", s.stats)
	router.POST("/import", s.importRecipe)

	// Weekly menus
	router.GET("/menus/current", s.currentMenu)
	router.GET("/menus/:week", s.getMenu)
	router.PUT("/menus/:week/:slot", s.assignMenuDay)
	router.DELETE("/menus/:week/:slot", s.clearMenuDay)

	if s.hub != nil {
		router.GET("/ws", events.WSHandler(s.hub))
	}

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	if s.hub != nil {
		s.hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// withCORS adds CORS headers for frontend development
func withCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func (s *Server) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if s.hub != nil {
		resp["listeners"] = s.hub.Stats().Clients
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			resp["status"] = "unavailable"
			resp["db_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		resp["db"] = "ok"
	}
	c.JSON(http.StatusOK, resp)
}
