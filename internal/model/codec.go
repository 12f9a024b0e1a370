package model

import (
	"encoding/json"
	"fmt"

	appErr "github.com/marginote/marginote/internal/pkg/errors"
)

// Content metadata and highlight positions are tagged unions persisted as
// opaque JSON. The owning content's type is the authoritative discriminator;
// Detect* structural sniffing exists only for untagged boundary data and
// treats ambiguous shapes as a hard failure.

type ArticleMetadata struct {
	Publication   string `json:"publication,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	Description   string `json:"description,omitempty"`
	Image         string `json:"image,omitempty"`
	WordCount     int    `json:"word_count,omitempty"`
}

type PDFMetadata struct {
	FileURL   string `json:"file_url"`
	PageCount int    `json:"page_count"`
}

type VideoMetadata struct {
	VideoID     string  `json:"video_id"`
	Duration    float64 `json:"duration"`
	Transcript  string  `json:"transcript,omitempty"`
	ChannelName string  `json:"channel_name,omitempty"`
}

type ArticlePosition struct {
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type PDFPosition struct {
	PageNumber  int         `json:"page_number"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

type VideoPosition struct {
	Timestamp float64 `json:"timestamp"`
}

func Encode(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// DecodeMetadata recovers the metadata variant for a content type. The blob
// must carry the variant's required fields and must not carry another
// variant's required pair.
func DecodeMetadata(raw json.RawMessage, contentType string) (interface{}, error) {
	fields, err := objectFields(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata is not a json object", appErr.ErrSchemaMismatch)
	}
	switch contentType {
	case ContentTypeArticle:
		if hasFields(fields, "file_url", "page_count") || hasFields(fields, "video_id", "duration") {
			return nil, fmt.Errorf("%w: blob is not article metadata", appErr.ErrSchemaMismatch)
		}
		var m ArticleMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", appErr.ErrSchemaMismatch, err)
		}
		return &m, nil
	case ContentTypePDF:
		if !hasFields(fields, "file_url", "page_count") {
			return nil, fmt.Errorf("%w: blob is not pdf metadata", appErr.ErrSchemaMismatch)
		}
		var m PDFMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", appErr.ErrSchemaMismatch, err)
		}
		return &m, nil
	case ContentTypeVideo:
		if !hasFields(fields, "video_id", "duration") {
			return nil, fmt.Errorf("%w: blob is not video metadata", appErr.ErrSchemaMismatch)
		}
		var m VideoMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", appErr.ErrSchemaMismatch, err)
		}
		return &m, nil
	}
	return nil, fmt.Errorf("%w: unknown content type %q", appErr.ErrInvalid, contentType)
}

// DecodePosition recovers the position variant for the owning content's type.
func DecodePosition(raw json.RawMessage, contentType string) (interface{}, error) {
	fields, err := objectFields(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: position is not a json object", appErr.ErrSchemaMismatch)
	}
	switch contentType {
	case ContentTypeArticle:
		if !hasFields(fields, "start_offset", "end_offset") {
			return nil, fmt.Errorf("%w: blob is not an article position", appErr.ErrSchemaMismatch)
		}
		var p ArticlePosition
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", appErr.ErrSchemaMismatch, err)
		}
		return &p, nil
	case ContentTypePDF:
		if !hasFields(fields, "page_number", "bounding_box") {
			return nil, fmt.Errorf("%w: blob is not a pdf position", appErr.ErrSchemaMismatch)
		}
		var p PDFPosition
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", appErr.ErrSchemaMismatch, err)
		}
		return &p, nil
	case ContentTypeVideo:
		if !hasFields(fields, "timestamp") || hasFields(fields, "page_number") {
			return nil, fmt.Errorf("%w: blob is not a video position", appErr.ErrSchemaMismatch)
		}
		var p VideoPosition
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", appErr.ErrSchemaMismatch, err)
		}
		return &p, nil
	}
	return nil, fmt.Errorf("%w: unknown content type %q", appErr.ErrInvalid, contentType)
}

// DetectMetadataType sniffs the content type of an untagged metadata blob.
// A blob matching more than one variant is rejected instead of silently
// picking one.
func DetectMetadataType(raw json.RawMessage) (string, error) {
	fields, err := objectFields(raw)
	if err != nil {
		return "", fmt.Errorf("%w: metadata is not a json object", appErr.ErrSchemaMismatch)
	}
	var matches []string
	if hasFields(fields, "file_url", "page_count") {
		matches = append(matches, ContentTypePDF)
	}
	if hasFields(fields, "video_id", "duration") {
		matches = append(matches, ContentTypeVideo)
	}
	if hasFields(fields, "word_count") || hasFields(fields, "publication") {
		matches = append(matches, ContentTypeArticle)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: metadata matches no variant", appErr.ErrSchemaMismatch)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("%w: metadata matches variants %v", appErr.ErrSchemaMismatch, matches)
	}
	return matches[0], nil
}

// DetectPositionType sniffs the content type of an untagged position blob.
func DetectPositionType(raw json.RawMessage) (string, error) {
	fields, err := objectFields(raw)
	if err != nil {
		return "", fmt.Errorf("%w: position is not a json object", appErr.ErrSchemaMismatch)
	}
	var matches []string
	if hasFields(fields, "page_number", "bounding_box") {
		matches = append(matches, ContentTypePDF)
	}
	if hasFields(fields, "start_offset", "end_offset") {
		matches = append(matches, ContentTypeArticle)
	}
	if hasFields(fields, "timestamp") && !hasFields(fields, "page_number") {
		matches = append(matches, ContentTypeVideo)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: position matches no variant", appErr.ErrSchemaMismatch)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("%w: position matches variants %v", appErr.ErrSchemaMismatch, matches)
	}
	return matches[0], nil
}

func objectFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func hasFields(fields map[string]json.RawMessage, names ...string) bool {
	for _, name := range names {
		if _, ok := fields[name]; !ok {
			return false
		}
	}
	return true
}
