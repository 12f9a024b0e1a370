package model

import "encoding/json"

const DefaultHighlightColor = "#ffeb3b"

type Highlight struct {
	ID           string          `json:"id"`
	ContentID    string          `json:"content_id"`
	SelectedText string          `json:"selected_text"`
	Context      string          `json:"context"`
	Position     json.RawMessage `json:"position"`
	Color        string          `json:"color"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    int64           `json:"created_at"`
	UpdatedAt    int64           `json:"updated_at"`
}
