package models

import (
	"time"
)

// Project is a flat project record, read-only in this service
type Project struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Status    *string   `json:"status,omitempty" db:"status"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
