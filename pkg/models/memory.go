package models

import (
	"strings"
	"time"
)

// MemoryType classifies a memory note. Values are always upper-case on the
// read path regardless of how the backing store cased them.
type MemoryType string

const (
	MemoryTypeDaily      MemoryType = "DAILY"
	MemoryTypePreference MemoryType = "PREFERENCE"
	MemoryTypeLearning   MemoryType = "LEARNING"
	MemoryTypeDecision   MemoryType = "DECISION"
	MemoryTypePerson     MemoryType = "PERSON"
	MemoryTypeProject    MemoryType = "PROJECT"
)

// NormalizeMemoryType upper-cases a stored type value into the canonical
// vocabulary.
func NormalizeMemoryType(t MemoryType) MemoryType {
	return MemoryType(strings.ToUpper(string(t)))
}

// Memory is a single memory note. For filesystem-derived memories Source is
// the absolute file path and acts as the natural key for deduplication.
type Memory struct {
	ID        string     `json:"id" db:"id"`
	Type      MemoryType `json:"type" db:"type"`
	Content   string     `json:"content" db:"content"`
	Category  *string    `json:"category,omitempty" db:"category"`
	Date      time.Time  `json:"date" db:"date"`
	Source    string     `json:"source" db:"source"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// MemoryFilter is the filter set accepted by memory list reads. Search is a
// case-insensitive substring match against content and category.
type MemoryFilter struct {
	Type     string
	Category string
	Search   string
}

// CreateMemoryRequest is the request body for creating a memory
type CreateMemoryRequest struct {
	Type     string  `json:"type" validate:"required,oneof=DAILY PREFERENCE LEARNING DECISION PERSON PROJECT"`
	Content  string  `json:"content" validate:"required"`
	Category *string `json:"category,omitempty"`
	Date     string  `json:"date" validate:"required"`
	Source   string  `json:"source,omitempty"`
}
