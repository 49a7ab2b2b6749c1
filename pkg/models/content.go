package models

import (
	"time"
)

// ContentStage is a stage in the ordered content pipeline
type ContentStage string

const (
	ContentStageIdea      ContentStage = "IDEA"
	ContentStageScript    ContentStage = "SCRIPT"
	ContentStageThumbnail ContentStage = "THUMBNAIL"
	ContentStageFilming   ContentStage = "FILMING"
	ContentStagePublished ContentStage = "PUBLISHED"
)

// ContentItem is an item moving through the content pipeline
type ContentItem struct {
	ID           string       `json:"id" db:"id"`
	Title        string       `json:"title" db:"title"`
	Stage        ContentStage `json:"stage" db:"stage"`
	Script       *string      `json:"script,omitempty" db:"script"`
	ThumbnailURL *string      `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Notes        *string      `json:"notes,omitempty" db:"notes"`
	PublishedAt  *time.Time   `json:"published_at,omitempty" db:"published_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// ContentFilter is the set of equality filters accepted by content list reads
type ContentFilter struct {
	Stage string
}

// CreateContentRequest is the request body for creating a content item.
// New items always start at the IDEA stage.
type CreateContentRequest struct {
	Title string  `json:"title" validate:"required"`
	Notes *string `json:"notes,omitempty"`
}

// UpdateContentRequest is the request body for patching a content item
type UpdateContentRequest struct {
	Title        *string `json:"title,omitempty"`
	Stage        *string `json:"stage,omitempty" validate:"omitempty,oneof=IDEA SCRIPT THUMBNAIL FILMING PUBLISHED"`
	Script       *string `json:"script,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	PublishedAt  *string `json:"published_at,omitempty"`
}
