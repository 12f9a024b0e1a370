package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marginote/marginote/internal/ai"
	"github.com/marginote/marginote/internal/config"
	"github.com/marginote/marginote/internal/db"
	"github.com/marginote/marginote/internal/extractor"
	"github.com/marginote/marginote/internal/filestore"
	"github.com/marginote/marginote/internal/handler"
	"github.com/marginote/marginote/internal/job"
	"github.com/marginote/marginote/internal/middleware"
	"github.com/marginote/marginote/internal/pkg/logutil"
	"github.com/marginote/marginote/internal/repo"
	"github.com/marginote/marginote/internal/schedule"
	"github.com/marginote/marginote/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "marginote",
		Short: "marginote annotation server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run marginote server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := logutil.Init(cfg.Log.Level, cfg.Log.Console); err != nil {
				return err
			}
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("file_store", cfg.FileStore.Type),
	)

	contentRepo := repo.NewContentRepo(conn)
	highlightRepo := repo.NewHighlightRepo(conn)
	commentRepo := repo.NewCommentRepo(conn)
	collectionRepo := repo.NewCollectionRepo(conn)
	memberRepo := repo.NewCollectionMemberRepo(conn)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	var articleExtractor service.ArticleExtractor
	readable := extractor.NewReadabilityExtractor(time.Duration(cfg.Extractor.TimeoutSeconds) * time.Second)
	articleExtractor = extractor.WrapLRUCache(readable, cfg.Extractor.CacheSize, time.Duration(cfg.Extractor.CacheTTLMinutes)*time.Minute)

	var prober service.VideoProber
	if cfg.Video.EnableProbe {
		prober = extractor.NewYouTubeProber()
	}

	var generator ai.IGenerator
	if cfg.AI.Provider != "" {
		provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
		if err != nil {
			return fmt.Errorf("init ai provider: %w", err)
		}
		generator = ai.NewGenerator(provider, cfg.AI.Model)
	}

	contentService := service.NewContentService(conn, contentRepo, memberRepo, articleExtractor, prober, store, cfg.BaseURL)
	highlightService := service.NewHighlightService(conn, highlightRepo, contentRepo)
	commentService := service.NewCommentService(conn, commentRepo, highlightRepo)
	collectionService := service.NewCollectionService(conn, collectionRepo, contentRepo, memberRepo)
	exportService := service.NewExportService(contentRepo, highlightRepo, commentRepo)
	replyService := service.NewReplyService(generator, commentService, commentRepo, highlightRepo, contentRepo)

	deps := handler.RouterDeps{
		Content:     handler.NewContentHandler(contentService, exportService),
		Highlights:  handler.NewHighlightHandler(highlightService, replyService),
		Comments:    handler.NewCommentHandler(commentService),
		Collections: handler.NewCollectionHandler(collectionService),
		Files:       handler.NewFileHandler(store, cfg.BaseURL),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(cfg.CORSAllowlist))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	handler.RegisterRoutes(engine.Group("/api/v1"), deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Jobs.IntegritySweepSpec != "" {
		sweep := job.NewIntegritySweepJob(highlightRepo, commentRepo, memberRepo)
		if err := scheduler.AddJob(sweep, cfg.Jobs.IntegritySweepSpec); err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: engine}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
