package model

const (
	AuthorTypeUser = "user"
	AuthorTypeLLM  = "llm"
)

func IsValidAuthorType(t string) bool {
	return t == AuthorTypeUser || t == AuthorTypeLLM
}

type LLMMetadata struct {
	Model             string   `json:"model"`
	Prompt            string   `json:"prompt"`
	RelatedContentIDs []string `json:"related_content_ids"`
}

type Comment struct {
	ID              string       `json:"id"`
	HighlightID     string       `json:"highlight_id"`
	ContentID       string       `json:"content_id"`
	Text            string       `json:"text"`
	AuthorType      string       `json:"author_type"`
	LLMMetadata     *LLMMetadata `json:"llm_metadata,omitempty"`
	ParentCommentID string       `json:"parent_comment_id,omitempty"`
	Order           int          `json:"order"`
	CreatedAt       int64        `json:"created_at"`
}
