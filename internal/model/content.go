package model

import "encoding/json"

const (
	ContentTypeArticle = "article"
	ContentTypePDF     = "pdf"
	ContentTypeVideo   = "video"
)

func IsValidContentType(t string) bool {
	switch t {
	case ContentTypeArticle, ContentTypePDF, ContentTypeVideo:
		return true
	}
	return false
}

type Progress struct {
	Position  float64 `json:"position"`
	Completed bool    `json:"completed"`
}

type Content struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	URL            string          `json:"url,omitempty"`
	Author         string          `json:"author,omitempty"`
	SavedAt        int64           `json:"saved_at"`
	LastAccessedAt int64           `json:"last_accessed_at"`
	Metadata       json.RawMessage `json:"metadata"`
	Content        string          `json:"content"`
	HTMLContent    string          `json:"html_content,omitempty"`
	Tags           []string        `json:"tags"`
	CollectionIDs  []string        `json:"collection_ids"`
	Progress       Progress        `json:"progress"`
}

// InCollection reports whether the content is a member of the given
// collection.
func (c *Content) InCollection(collectionID string) bool {
	for _, id := range c.CollectionIDs {
		if id == collectionID {
			return true
		}
	}
	return false
}
