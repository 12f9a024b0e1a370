package service_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/marginote/marginote/internal/extractor"
	"github.com/marginote/marginote/internal/filestore"
	"github.com/marginote/marginote/internal/repo"
	"github.com/marginote/marginote/internal/service"
	"github.com/marginote/marginote/internal/testutil"
)

type stubExtractor struct {
	meta *extractor.Metadata
	err  error
}

func (s *stubExtractor) ExtractFromURL(ctx context.Context, pageURL string) (*extractor.Metadata, error) {
	return s.meta, s.err
}

func (s *stubExtractor) ExtractFromHTML(ctx context.Context, html string, pageURL string) (*extractor.Metadata, error) {
	return s.meta, s.err
}

type stubProber struct {
	info *extractor.VideoInfo
	err  error
}

func (s *stubProber) Probe(ctx context.Context, videoID string) (*extractor.VideoInfo, error) {
	return s.info, s.err
}

type stubStore struct {
	saved    map[string]int64
	failSave bool
}

func newStubStore() *stubStore {
	return &stubStore{saved: map[string]int64{}}
}

func (s *stubStore) Type() string { return "stub" }

func (s *stubStore) Save(ctx context.Context, key string, r filestore.ReadSeekCloser, size int64) error {
	if s.failSave {
		return errors.New("sink unavailable")
	}
	s.saved[key] = size
	return nil
}

func (s *stubStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *stubStore) URL(key, baseURL string) string {
	return baseURL + "/api/v1/files/" + key
}

type nopReadSeekCloser struct{}

func (nopReadSeekCloser) Read(p []byte) (int, error) { return 0, io.EOF }

func (nopReadSeekCloser) Seek(offset int64, whence int) (int64, error) { return 0, nil }

func (nopReadSeekCloser) Close() error { return nil }

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.reply, s.err
}

func (s *stubGenerator) ModelName() string { return "stub-model" }

type env struct {
	conn        *sql.DB
	contents    *repo.ContentRepo
	highlights  *repo.HighlightRepo
	comments    *repo.CommentRepo
	collections *repo.CollectionRepo
	members     *repo.CollectionMemberRepo

	store *stubStore

	contentSvc    *service.ContentService
	highlightSvc  *service.HighlightService
	commentSvc    *service.CommentService
	collectionSvc *service.CollectionService
	exportSvc     *service.ExportService
}

func newEnv(t *testing.T, ex service.ArticleExtractor, prober service.VideoProber) *env {
	t.Helper()
	conn := testutil.OpenTestDB(t)
	e := &env{
		conn:        conn,
		contents:    repo.NewContentRepo(conn),
		highlights:  repo.NewHighlightRepo(conn),
		comments:    repo.NewCommentRepo(conn),
		collections: repo.NewCollectionRepo(conn),
		members:     repo.NewCollectionMemberRepo(conn),
		store:       newStubStore(),
	}
	e.contentSvc = service.NewContentService(conn, e.contents, e.members, ex, prober, e.store, "http://localhost:8080")
	e.highlightSvc = service.NewHighlightService(conn, e.highlights, e.contents)
	e.commentSvc = service.NewCommentService(conn, e.comments, e.highlights)
	e.collectionSvc = service.NewCollectionService(conn, e.collections, e.contents, e.members)
	e.exportSvc = service.NewExportService(e.contents, e.highlights, e.comments)
	return e
}
