package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/repo"
)

const (
	ExportFormatMarkdown = "markdown"
	ExportFormatHTML     = "html"
)

// ExportService renders a content record together with its highlights and
// comment threads as a single annotated document.
type ExportService struct {
	contents   *repo.ContentRepo
	highlights *repo.HighlightRepo
	comments   *repo.CommentRepo
}

func NewExportService(contents *repo.ContentRepo, highlights *repo.HighlightRepo, comments *repo.CommentRepo) *ExportService {
	return &ExportService{contents: contents, highlights: highlights, comments: comments}
}

type ExportResult struct {
	FileName    string
	ContentType string
	Body        []byte
}

func (s *ExportService) Export(ctx context.Context, contentID string, format string) (*ExportResult, error) {
	if format == "" {
		format = ExportFormatMarkdown
	}
	if format != ExportFormatMarkdown && format != ExportFormatHTML {
		return nil, fmt.Errorf("%w: unsupported export format %q", appErr.ErrInvalid, format)
	}
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	highlights, err := s.highlights.ListByContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	markdown, err := s.renderMarkdown(ctx, content, highlights)
	if err != nil {
		return nil, err
	}

	if format == ExportFormatHTML {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		return &ExportResult{
			FileName:    exportFileName(content.Title, "html"),
			ContentType: "text/html; charset=utf-8",
			Body:        buf.Bytes(),
		}, nil
	}
	return &ExportResult{
		FileName:    exportFileName(content.Title, "md"),
		ContentType: "text/markdown; charset=utf-8",
		Body:        []byte(markdown),
	}, nil
}

func (s *ExportService) renderMarkdown(ctx context.Context, content *model.Content, highlights []model.Highlight) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", content.Title)
	if content.URL != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", content.URL)
	}
	if content.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n\n", content.Author)
	}
	if len(content.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(content.Tags, ", "))
	}
	if len(highlights) == 0 {
		b.WriteString("No highlights.\n")
		return b.String(), nil
	}
	b.WriteString("## Highlights\n\n")
	for i, h := range highlights {
		fmt.Fprintf(&b, "### %d.\n\n", i+1)
		fmt.Fprintf(&b, "> %s\n\n", h.SelectedText)
		if h.Note != "" {
			fmt.Fprintf(&b, "Note: %s\n\n", h.Note)
		}
		thread, err := s.comments.ListByHighlight(ctx, h.ID)
		if err != nil {
			return "", err
		}
		for _, cm := range thread {
			fmt.Fprintf(&b, "- **%s**: %s\n", cm.AuthorType, cm.Text)
		}
		if len(thread) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func exportFileName(title, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		}
		return -1
	}, title)
	slug = strings.Trim(strings.ToLower(slug), "-")
	if slug == "" {
		slug = "content"
	}
	return slug + "." + ext
}
