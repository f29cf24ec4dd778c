package atelier

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
)

// App wires config, store and HTTP surface together.
type App struct {
	cfg     *Config
	echo    *echo.Echo
	store   Store
	issuer  *TokenIssuer
	limiter *loginLimiter

	stopRetention func()
}

// New builds an App around the given config. Call Bootstrap before Start.
func New(cfg *Config) *App {
	e := echo.New()
	e.HideBanner = true

	return &App{
		cfg:     cfg,
		echo:    e,
		issuer:  NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL),
		limiter: newLoginLimiter(5, 15*time.Minute),
	}
}

// Bootstrap opens the store and registers middleware and routes. It is
// separate from New so tests can bootstrap against a prepared store.
func (a *App) Bootstrap(ctx context.Context) error {
	if a.store == nil {
		store, err := OpenStore(ctx, a.cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		a.store = store
	}
	a.setupMiddleware()
	a.routes()
	a.stopRetention = StartRetention(a.store, a.cfg.AnalyticsRetentionDays)
	return nil
}

func (a *App) routes() {
	e := a.echo

	e.Static("/uploads", a.cfg.UploadsDir)

	api := e.Group("/api")
	api.GET("/homepage", a.handleHomepage)
	api.GET("/essays", a.handleEssays)
	api.GET("/essays/:id", a.handleEssay)
	api.GET("/works", a.handleWorks)
	api.GET("/works/:id", a.handleWork)
	api.GET("/blog", a.handleBlogPosts)
	api.GET("/blog/:id", a.handleBlogPost)
	api.GET("/quotes", a.handleQuotes)
	api.GET("/projects", a.handleProjects)

	api.POST("/views", a.handleTrackView)
	api.POST("/projects/:id/view", a.handleProjectView)

	api.POST("/reactions", a.handleAddReaction)
	api.DELETE("/reactions", a.handleRemoveReaction)
	api.PUT("/reactions", a.handleChangeReaction)
	api.GET("/reactions/:id/status", a.handleHasReacted)

	admin := api.Group("/admin")
	admin.POST("/login", a.handleLogin)
	admin.POST("/logout", a.handleLogout, a.requireAdmin)

	auth := admin.Group("", a.requireAdmin)

	auth.GET("/essays", a.handleEssays)
	auth.POST("/essays", a.adminCreateEssay)
	auth.PUT("/essays/:id", a.adminUpdateEssay)
	auth.DELETE("/essays/:id", a.adminDeleteEssay)

	auth.GET("/works", a.handleWorks)
	auth.POST("/works", a.adminCreateWork)
	auth.PUT("/works/:id", a.adminUpdateWork)
	auth.DELETE("/works/:id", a.adminDeleteWork)

	auth.GET("/projects", a.handleProjects)
	auth.POST("/projects", a.adminCreateProject)
	auth.PUT("/projects/:id", a.adminUpdateProject)
	auth.DELETE("/projects/:id", a.adminDeleteProject)

	auth.GET("/blog", a.handleBlogPosts)
	auth.POST("/blog", a.adminCreateBlogPost)
	auth.PUT("/blog/:id", a.adminUpdateBlogPost)
	auth.DELETE("/blog/:id", a.adminDeleteBlogPost)

	auth.GET("/quotes", a.adminListQuotes)
	auth.POST("/quotes", a.adminCreateQuote)
	auth.PUT("/quotes/:id", a.adminUpdateQuote)
	auth.DELETE("/quotes/:id", a.adminDeleteQuote)

	auth.GET("/homepage", a.adminHomepage)
	auth.PUT("/homepage", a.adminUpdateHomepage)

	auth.GET("/analytics", a.adminAnalytics)
	auth.POST("/upload", a.handleUpload)
	auth.POST("/migrate", a.adminMigrate)
}

// Start blocks serving HTTP until the listener fails or is shut down.
func (a *App) Start() error {
	return a.echo.Start(a.cfg.Addr)
}

// Shutdown drains in-flight requests and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	if a.stopRetention != nil {
		a.stopRetention()
	}
	a.limiter.Stop()
	err := a.echo.Shutdown(ctx)
	if a.store != nil {
		if cerr := a.store.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
