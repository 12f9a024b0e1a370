package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/marginote/marginote/internal/extractor"
	"github.com/marginote/marginote/internal/filestore"
	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/pkg/logutil"
	"github.com/marginote/marginote/internal/pkg/timeutil"
	"github.com/marginote/marginote/internal/repo"
)

const (
	untitledArticle = "Untitled Article"
	untitledVideo   = "Untitled Video"
)

var youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&?]+)`)

// ArticleExtractor is the external readability collaborator. It is best
// effort: errors mean "no enrichment available" and never block a save.
type ArticleExtractor interface {
	ExtractFromURL(ctx context.Context, pageURL string) (*extractor.Metadata, error)
	ExtractFromHTML(ctx context.Context, html string, pageURL string) (*extractor.Metadata, error)
}

// VideoProber fills duration and channel name for recognized videos.
type VideoProber interface {
	Probe(ctx context.Context, videoID string) (*extractor.VideoInfo, error)
}

type ContentService struct {
	conn      *sql.DB
	contents  *repo.ContentRepo
	members   *repo.CollectionMemberRepo
	extractor ArticleExtractor
	prober    VideoProber
	files     filestore.Store
	baseURL   string
}

func NewContentService(conn *sql.DB, contents *repo.ContentRepo, members *repo.CollectionMemberRepo, ex ArticleExtractor, prober VideoProber, files filestore.Store, baseURL string) *ContentService {
	return &ContentService{conn: conn, contents: contents, members: members, extractor: ex, prober: prober, files: files, baseURL: baseURL}
}

type CreateContentInput struct {
	Type          string          `json:"type"`
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Content       string          `json:"content"`
	HTMLContent   string          `json:"html_content"`
	Metadata      json.RawMessage `json:"metadata"`
	Tags          []string        `json:"tags"`
	CollectionIDs []string        `json:"collection_ids"`
	Progress      *model.Progress `json:"progress"`
}

func (s *ContentService) Create(ctx context.Context, in CreateContentInput) (*model.Content, error) {
	if !model.IsValidContentType(in.Type) || in.URL == "" {
		return nil, fmt.Errorf("%w: type and url are required", appErr.ErrInvalid)
	}
	if len(in.Metadata) > 0 && !isEmptyJSONObject(in.Metadata) {
		if _, err := model.DecodeMetadata(in.Metadata, in.Type); err != nil {
			return nil, err
		}
	}

	now := timeutil.NowUnix()
	c := &model.Content{
		ID:             newID(),
		Type:           in.Type,
		Title:          in.Title,
		URL:            in.URL,
		Author:         in.Author,
		SavedAt:        now,
		LastAccessedAt: now,
		Metadata:       in.Metadata,
		Content:        in.Content,
		HTMLContent:    in.HTMLContent,
		Tags:           in.Tags,
		CollectionIDs:  in.CollectionIDs,
		Progress:       model.Progress{},
	}
	if in.Progress != nil {
		c.Progress = *in.Progress
	}

	switch c.Type {
	case model.ContentTypeArticle:
		s.enrichArticle(ctx, c)
	case model.ContentTypeVideo:
		s.enrichVideo(ctx, c)
	}

	err := repo.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		if err := repo.NewContentRepo(tx).Create(ctx, c); err != nil {
			return err
		}
		return repo.NewCollectionMemberRepo(tx).Replace(ctx, c.ID, in.CollectionIDs, now)
	})
	if err != nil {
		return nil, err
	}
	c.Tags = emptySliceIfNil(c.Tags)
	c.CollectionIDs = emptySliceIfNil(in.CollectionIDs)
	if len(c.Metadata) == 0 {
		c.Metadata = json.RawMessage(`{}`)
	}
	return c, nil
}

// enrichArticle runs the readability collaborator and fills only the fields
// the caller left empty. Extraction failure degrades to an untitled save.
func (s *ContentService) enrichArticle(ctx context.Context, c *model.Content) {
	var meta model.ArticleMetadata
	if len(c.Metadata) > 0 {
		_ = json.Unmarshal(c.Metadata, &meta)
	}

	var fetched *extractor.Metadata
	if s.extractor != nil {
		var err error
		fetched, err = s.extractor.ExtractFromURL(ctx, c.URL)
		if err != nil && c.HTMLContent != "" {
			fetched, err = s.extractor.ExtractFromHTML(ctx, c.HTMLContent, c.URL)
		}
		if err != nil {
			logutil.GetLogger(ctx).Warn("article enrichment unavailable", zap.String("url", c.URL), zap.Error(err))
			fetched = nil
		}
	}
	if fetched != nil {
		if c.Title == "" {
			c.Title = fetched.Title
		}
		if c.Author == "" {
			c.Author = fetched.Author
		}
		if c.Content == "" {
			c.Content = fetched.Content
		}
		if c.HTMLContent == "" {
			c.HTMLContent = fetched.HTMLContent
		}
		if meta.Publication == "" {
			meta.Publication = fetched.Publication
		}
		if meta.PublishedDate == "" {
			meta.PublishedDate = fetched.PublishedDate
		}
		meta.Description = fetched.Description
		meta.Image = fetched.Image
		meta.WordCount = fetched.WordCount
	}
	if c.Title == "" {
		c.Title = untitledArticle
	}
	c.Metadata, _ = model.Encode(&meta)
}

// enrichVideo derives the platform video id from recognized URL shapes and
// seeds duration=0; the optional prober upgrades duration/channel when the
// platform is reachable.
func (s *ContentService) enrichVideo(ctx context.Context, c *model.Content) {
	if c.Title == "" {
		c.Title = untitledVideo
	}
	match := youtubeIDPattern.FindStringSubmatch(c.URL)
	if match == nil {
		return
	}
	var meta model.VideoMetadata
	if len(c.Metadata) > 0 {
		_ = json.Unmarshal(c.Metadata, &meta)
	}
	meta.VideoID = match[1]
	if s.prober != nil && meta.Duration == 0 {
		if info, err := s.prober.Probe(ctx, meta.VideoID); err == nil {
			meta.Duration = info.Duration
			if meta.ChannelName == "" {
				meta.ChannelName = info.ChannelName
			}
		}
	}
	c.Metadata, _ = model.Encode(&meta)
}

type CreatePDFInput struct {
	Title         string
	Author        string
	Tags          []string
	CollectionIDs []string
	FileName      string
	ContentType   string
	Size          int64
	File          filestore.ReadSeekCloser
}

// CreatePDF stores the uploaded file first; a sink failure blocks creation so
// no pdf record ever exists without a valid file reference.
func (s *ContentService) CreatePDF(ctx context.Context, in CreatePDFInput) (*model.Content, error) {
	if in.File == nil {
		return nil, fmt.Errorf("%w: file is required", appErr.ErrInvalid)
	}
	if in.ContentType != "application/pdf" {
		return nil, fmt.Errorf("%w: only pdf files are allowed", appErr.ErrInvalid)
	}
	ext := filepath.Ext(in.FileName)
	if ext == "" {
		ext = ".pdf"
	}
	key := newID() + ext
	if err := s.files.Save(ctx, key, in.File, in.Size); err != nil {
		logutil.GetLogger(ctx).Error("pdf upload failed", zap.String("file", in.FileName), zap.Error(err))
		return nil, fmt.Errorf("%w: store pdf: %v", appErr.ErrDependency, err)
	}
	fileURL := s.files.URL(key, s.baseURL)

	metadata, err := model.Encode(&model.PDFMetadata{FileURL: fileURL, PageCount: 0})
	if err != nil {
		return nil, err
	}
	title := in.Title
	if title == "" {
		title = strings.TrimSuffix(in.FileName, ".pdf")
	}
	now := timeutil.NowUnix()
	c := &model.Content{
		ID:             newID(),
		Type:           model.ContentTypePDF,
		Title:          title,
		Author:         in.Author,
		SavedAt:        now,
		LastAccessedAt: now,
		Metadata:       metadata,
		Tags:           in.Tags,
		CollectionIDs:  in.CollectionIDs,
	}
	err = repo.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		if err := repo.NewContentRepo(tx).Create(ctx, c); err != nil {
			return err
		}
		return repo.NewCollectionMemberRepo(tx).Replace(ctx, c.ID, in.CollectionIDs, now)
	})
	if err != nil {
		return nil, err
	}
	c.Tags = emptySliceIfNil(c.Tags)
	c.CollectionIDs = emptySliceIfNil(in.CollectionIDs)
	return c, nil
}

// Get fetches by id and refreshes last_accessed_at: every read is also a
// write.
func (s *ContentService) Get(ctx context.Context, id string) (*model.Content, error) {
	c, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	if err := s.contents.UpdateLastAccessed(ctx, id, now); err != nil {
		return nil, err
	}
	c.LastAccessedAt = now
	if c.CollectionIDs, err = s.members.ListByContent(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContentService) List(ctx context.Context) ([]model.Content, error) {
	items, err := s.contents.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachCollectionIDs(ctx, items)
}

// attachCollectionIDs fills the collection_ids view field from the membership
// table for a batch of rows.
func (s *ContentService) attachCollectionIDs(ctx context.Context, items []model.Content) ([]model.Content, error) {
	if len(items) == 0 {
		return items, nil
	}
	ids := make([]string, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
	}
	byContent, err := s.members.MapByContent(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if got, ok := byContent[items[i].ID]; ok {
			items[i].CollectionIDs = got
		}
	}
	return items, nil
}

type UpdateContentInput struct {
	Title         *string         `json:"title"`
	URL           *string         `json:"url"`
	Author        *string         `json:"author"`
	Content       *string         `json:"content"`
	HTMLContent   *string         `json:"html_content"`
	Metadata      json.RawMessage `json:"metadata"`
	Tags          *[]string       `json:"tags"`
	CollectionIDs *[]string       `json:"collection_ids"`
	Progress      *model.Progress `json:"progress"`
}

func (s *ContentService) Update(ctx context.Context, id string, in UpdateContentInput) (*model.Content, error) {
	c, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.URL != nil {
		c.URL = *in.URL
	}
	if in.Author != nil {
		c.Author = *in.Author
	}
	if in.Content != nil {
		c.Content = *in.Content
	}
	if in.HTMLContent != nil {
		c.HTMLContent = *in.HTMLContent
	}
	if in.Metadata != nil {
		if !isEmptyJSONObject(in.Metadata) {
			if _, err := model.DecodeMetadata(in.Metadata, c.Type); err != nil {
				return nil, err
			}
		}
		c.Metadata = in.Metadata
	}
	if in.Tags != nil {
		c.Tags = *in.Tags
	}
	if in.Progress != nil {
		c.Progress = *in.Progress
	}
	err = repo.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		if err := repo.NewContentRepo(tx).Update(ctx, c); err != nil {
			return err
		}
		if in.CollectionIDs == nil {
			return nil
		}
		return repo.NewCollectionMemberRepo(tx).Replace(ctx, id, *in.CollectionIDs, timeutil.NowUnix())
	})
	if err != nil {
		return nil, err
	}
	if c.CollectionIDs, err = s.members.ListByContent(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the content and cascades to its highlights and their
// comments inside one transaction.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	return repo.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		if err := repo.NewCommentRepo(tx).DeleteByContent(ctx, id); err != nil {
			return err
		}
		if err := repo.NewHighlightRepo(tx).DeleteByContent(ctx, id); err != nil {
			return err
		}
		if err := repo.NewCollectionMemberRepo(tx).DeleteByContent(ctx, id); err != nil {
			return err
		}
		return repo.NewContentRepo(tx).Delete(ctx, id)
	})
}

func isEmptyJSONObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "{}" || trimmed == "null"
}

func emptySliceIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
