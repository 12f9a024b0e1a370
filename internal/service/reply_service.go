package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/marginote/marginote/internal/ai"
	"github.com/marginote/marginote/internal/model"
	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/pkg/logutil"
	"github.com/marginote/marginote/internal/repo"
)

// ReplyService asks the configured LLM for a reply to a highlight's thread
// and files the answer as an ordinary llm-authored comment.
type ReplyService struct {
	generator  ai.IGenerator
	comments   *CommentService
	commentLog *repo.CommentRepo
	highlights *repo.HighlightRepo
	contents   *repo.ContentRepo
}

func NewReplyService(generator ai.IGenerator, comments *CommentService, commentLog *repo.CommentRepo, highlights *repo.HighlightRepo, contents *repo.ContentRepo) *ReplyService {
	return &ReplyService{generator: generator, comments: comments, commentLog: commentLog, highlights: highlights, contents: contents}
}

func (s *ReplyService) GenerateReply(ctx context.Context, highlightID string, instructions string) (*model.Comment, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: no ai provider configured", appErr.ErrDependency)
	}
	highlight, err := s.highlights.GetByID(ctx, highlightID)
	if err != nil {
		return nil, err
	}
	content, err := s.contents.GetByID(ctx, highlight.ContentID)
	if err != nil {
		return nil, err
	}
	thread, err := s.commentLog.ListByHighlight(ctx, highlightID)
	if err != nil {
		return nil, err
	}

	prompt := buildReplyPrompt(content, highlight, thread, instructions)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logutil.GetLogger(ctx).Warn("llm reply failed", zap.String("highlight_id", highlightID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrDependency, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty model response", appErr.ErrDependency)
	}

	parentID := ""
	if len(thread) > 0 {
		parentID = thread[len(thread)-1].ID
	}
	return s.comments.Create(ctx, CreateCommentInput{
		HighlightID: highlightID,
		Text:        text,
		AuthorType:  model.AuthorTypeLLM,
		LLMMetadata: &model.LLMMetadata{
			Model:             s.generator.ModelName(),
			Prompt:            prompt,
			RelatedContentIDs: []string{content.ID},
		},
		ParentCommentID: parentID,
	})
}

func buildReplyPrompt(content *model.Content, highlight *model.Highlight, thread []model.Comment, instructions string) string {
	var b strings.Builder
	b.WriteString("You are discussing a saved piece of content with its reader.\n")
	fmt.Fprintf(&b, "Content title: %s\n", content.Title)
	fmt.Fprintf(&b, "Highlighted passage: %q\n", highlight.SelectedText)
	if highlight.Context != "" {
		fmt.Fprintf(&b, "Surrounding context: %q\n", highlight.Context)
	}
	if highlight.Note != "" {
		fmt.Fprintf(&b, "Reader's note: %s\n", highlight.Note)
	}
	if len(thread) > 0 {
		b.WriteString("Thread so far:\n")
		for _, cm := range thread {
			fmt.Fprintf(&b, "- [%s] %s\n", cm.AuthorType, cm.Text)
		}
	}
	if instructions != "" {
		fmt.Fprintf(&b, "Reader's request: %s\n", instructions)
	}
	b.WriteString("Write the next reply in the thread. Be concise and concrete.")
	return b.String()
}
