package model

type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// CollectionWithContent is the materialized view returned when fetching a
// single collection: the collection row plus every member content record.
type CollectionWithContent struct {
	Collection
	Content []Content `json:"content"`
}
