package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/marginote/marginote/internal/config"
	"github.com/marginote/marginote/internal/filestore"
	"github.com/marginote/marginote/internal/handler"
	"github.com/marginote/marginote/internal/middleware"
	"github.com/marginote/marginote/internal/repo"
	"github.com/marginote/marginote/internal/service"
	"github.com/marginote/marginote/internal/testutil"
)

type fixedGenerator struct {
	reply string
}

func (g fixedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.reply, nil
}

func (g fixedGenerator) ModelName() string { return "fixed-model" }

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := testutil.OpenTestDB(t)
	contentRepo := repo.NewContentRepo(conn)
	highlightRepo := repo.NewHighlightRepo(conn)
	commentRepo := repo.NewCommentRepo(conn)
	collectionRepo := repo.NewCollectionRepo(conn)
	memberRepo := repo.NewCollectionMemberRepo(conn)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)

	contentService := service.NewContentService(conn, contentRepo, memberRepo, nil, nil, store, "http://localhost:8080")
	highlightService := service.NewHighlightService(conn, highlightRepo, contentRepo)
	commentService := service.NewCommentService(conn, commentRepo, highlightRepo)
	collectionService := service.NewCollectionService(conn, collectionRepo, contentRepo, memberRepo)
	exportService := service.NewExportService(contentRepo, highlightRepo, commentRepo)
	replyService := service.NewReplyService(fixedGenerator{reply: "a generated reply"}, commentService, commentRepo, highlightRepo, contentRepo)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	handler.RegisterRoutes(api, handler.RouterDeps{
		Content:     handler.NewContentHandler(contentService, exportService),
		Highlights:  handler.NewHighlightHandler(highlightService, replyService),
		Comments:    handler.NewCommentHandler(commentService),
		Collections: handler.NewCollectionHandler(collectionService),
		Files:       handler.NewFileHandler(store, "http://localhost:8080"),
	})
	return engine
}
