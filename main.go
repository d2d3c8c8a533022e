package main

import (
	"context"
	"errors"
	"github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
	"golang.org/x/text/language"
	"io"
	"it-solutions-hub/internal/admin"
	"it-solutions-hub/internal/auth"
	"it-solutions-hub/internal/config"
	"it-solutions-hub/internal/constants"
	"it-solutions-hub/internal/controllers"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/listing"
	"it-solutions-hub/internal/logging"
	"it-solutions-hub/internal/media"
	"it-solutions-hub/internal/navigation"
	"it-solutions-hub/internal/render"
	"it-solutions-hub/internal/routes"
	"it-solutions-hub/internal/site"
	"it-solutions-hub/internal/sitemap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	c := config.InitConfig()

	logger := logging.InitLogging(c)

	controllerRegistry, err := injectDependencies(c, logger)
	if err != nil {
		logger.LogErrorf(logging.GetLogTypeInitialization(), "injecting dependencies failed: %s", err.Error())
		os.Exit(1)
	}

	ginLogger := logging.InitGinLogger(c)

	gin.DefaultWriter = io.MultiWriter(&zapio.Writer{Log: ginLogger, Level: c.Logging.Level})
	if c.Logging.Level == zap.DebugLevel {
		logger.LogDebug(nil, "Enabling Gin debug (writes to access log)")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		ginzap.GinzapWithConfig(ginLogger, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        false,
			SkipPaths:  []string{"/status", "/heartbeat"},
		}),
		ginzap.RecoveryWithZap(ginLogger, true),
	)

	// Routes
	if err := routes.InitRouter(r, controllerRegistry, c); err != nil {
		logger.LogErrorf(logging.GetLogTypeInitialization(), "initializing routes failed: %v", err)
		os.Exit(1)
	}

	if len(c.ListeningAddress) == 0 && len(c.ListeningPort) == 0 {
		panic("No listening address/port provided")
	}

	server := &http.Server{
		Addr:    config.Address() + ":" + config.Port(),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		defer logger.RecoverPanic("http server")
		logger.LogInfof(nil, "Site running. Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogErrorf(nil, "Listening on %s failed: %s", server.Addr, err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	logger.LogWarnf(nil, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout.Duration)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogErrorf(nil, "graceful shutdown failed: %v", err)
	}
}

func injectDependencies(cfg *config.Configuration, logger logging.Logger) (map[int]any, error) {
	if len(cfg.Admin.SigningKey) == 0 {
		return nil, errors.New("admin signing key must be set")
	}

	db, err := database.InitDatabase(cfg, logger)
	if err != nil {
		logger.LogError(nil, "error initializing database: ", err)
		return nil, err
	}

	env := environment.Environment(
		&database.GormRepository{DB: db},
		logger,
	)

	// the site language selects the collation of tag names and menu labels
	lang, err := language.Parse(cfg.Site.Language)
	if err != nil {
		logger.LogWarnf(logging.GetLogTypeInitialization(), "unknown site language %q, sorting with English rules", cfg.Site.Language)
		lang = language.English
	}

	renderer, err := render.New(gin.H{
		"site_name": cfg.Site.Name,
		"debug":     cfg.Site.Debug,
		"language":  lang.String(),
		"query":     "",
	})
	if err != nil {
		logger.LogErrorf(logging.GetLogTypeInitialization(), "error parsing templates: %v", err)
		return nil, err
	}

	siteController := &site.Controller{
		Env:        env,
		Listing:    &listing.Engine{Env: env, Language: lang},
		Navigation: navigation.TreeService{Env: env, Language: lang},
		Renderer:   renderer,
	}

	sitemapController := &sitemap.Controller{
		Env:                 env,
		Generator:           sitemap.Generator{Env: env},
		BaseUrl:             config.BaseUrl(),
		TrustForwardedProto: cfg.Site.TrustForwardedProto,
	}

	store := &media.Store{Root: cfg.Media.Root, MaxUploadBytes: cfg.Media.MaxUploadMB << 20}
	mediaController := &media.Controller{Env: env, Store: store}

	adminController := &admin.Controller{
		Env:           env,
		RecordService: admin.RecordService{Env: env},
		Store:         store,
	}

	authController := &auth.Controller{
		Env:         env,
		AuthService: &auth.AuthService{Env: env},
		SigningKey:  cfg.Admin.SigningKey,
		TokenTtl:    cfg.Admin.TokenTtl.Duration,
	}

	controllerRegistry := make(map[int]any)
	controllerRegistry[constants.Site] = siteController
	controllerRegistry[constants.Sitemap] = sitemapController
	controllerRegistry[constants.Media] = mediaController
	controllerRegistry[constants.Admin] = adminController
	controllerRegistry[constants.Auth] = authController
	controllerRegistry[constants.Status] = &controllers.StatusController{Env: env}

	return controllerRegistry, nil
}
