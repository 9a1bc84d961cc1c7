package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-cms/pkg/config"
	"blog-cms/pkg/handlers"
	"blog-cms/pkg/services"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "blog-cms",
		Short:        "Blog with a JSON document store and static article pages",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.Init()
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: config.LogLevel,
			})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}, &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild every article page from the stored document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return regenerate(cmd.Context())
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newPublisher(store *services.Store) (*services.Publisher, error) {
	return services.NewPublisher(store, config.ArticlesDir, services.PageSite{
		Name: config.SiteName,
		Lang: config.Language,
	}, config.ArticleTemplate, slog.Default())
}

func regenerate(ctx context.Context) error {
	store := services.NewStore(config.DataFile)
	publisher, err := newPublisher(store)
	if err != nil {
		return err
	}
	res, err := publisher.Regenerate(ctx)
	if err != nil {
		slog.Error("regenerate failed", "error", err)
		return err
	}
	slog.Info("regenerated article pages", "pages", res.Pages)
	return nil
}

func serve(ctx context.Context) error {
	logger := slog.Default()

	store := services.NewStore(config.DataFile)
	if err := store.Init(); err != nil {
		return err
	}
	for _, dir := range []string{config.ResourcesDir, config.ArticlesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	publisher, err := newPublisher(store)
	if err != nil {
		return err
	}
	locale := services.LocaleFor(config.Language)

	api := &handlers.API{
		Store:          store,
		Publisher:      publisher,
		Media:          services.NewMedia(config.ResourcesDir, config.ResourcesURL),
		Sessions:       services.NewEditorSessions(store.Load, services.WithLocale(locale)),
		Locale:         locale,
		PageSize:       config.PageSize,
		DiscoveryCount: config.DiscoveryCount,
		AdminPassword:  config.AdminPassword,
		Logger:         logger,
	}

	r := gin.Default()
	r.MaxMultipartMemory = config.MaxBodyBytes
	r.Use(handlers.LimitBody(config.MaxBodyBytes))
	api.Register(r, cookie.NewStore([]byte(config.SessionSecret)), handlers.StaticDirs{
		Resources: config.ResourcesDir,
		Articles:  config.ArticlesDir,
		Public:    config.PublicDir,
	})

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           cors.AllowAll().Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", config.Port, "data_file", config.DataFile, "language", config.Language)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
