package models

import (
	"time"
)

// Calendar event sources. Synchronized events are deduplicated on the
// (title, source) pair, so the source tag doubles as half of the natural key.
const (
	EventSourceManual         = "manual"
	EventSourceMissionControl = "mission-control"
	EventSourceKyberosCrontab = "kyberos crontab"
)

// CalendarEvent is a scheduled event on the calendar view. Time is a display
// string: either "HH:MM" or, for schedules that do not reduce to a clock
// time, the raw cron expression.
type CalendarEvent struct {
	ID         string     `json:"id" db:"id"`
	Title      string     `json:"title" db:"title"`
	Time       string     `json:"time" db:"time"`
	Recurrence *string    `json:"recurrence,omitempty" db:"recurrence"`
	Status     string     `json:"status" db:"status"`
	Source     string     `json:"source" db:"source"`
	Color      string     `json:"color" db:"color"`
	LastRun    *time.Time `json:"last_run,omitempty" db:"last_run"`
	NextRun    *time.Time `json:"next_run,omitempty" db:"next_run"`
}

// CalendarFilter is the set of equality filters accepted by calendar list reads
type CalendarFilter struct {
	Status string
	Source string
}

// CreateEventRequest is the request body for creating a calendar event
type CreateEventRequest struct {
	Title      string  `json:"title" validate:"required"`
	Time       string  `json:"time" validate:"required"`
	Recurrence *string `json:"recurrence,omitempty"`
	Source     string  `json:"source,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// UpdateEventRequest is the request body for patching a calendar event
type UpdateEventRequest struct {
	Title      *string `json:"title,omitempty"`
	Time       *string `json:"time,omitempty"`
	Recurrence *string `json:"recurrence,omitempty"`
	Status     *string `json:"status,omitempty"`
	LastRun    *string `json:"last_run,omitempty"`
	NextRun    *string `json:"next_run,omitempty"`
}
