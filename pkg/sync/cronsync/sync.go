// Package cronsync translates crontab schedules into calendar events. Events
// are keyed by the (title, source) pair, so repeated passes converge on the
// same calendar.
package cronsync

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/kyberos/mission-control/pkg/metrics"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// EventStore is the slice of the calendar repository the synchronizer needs
type EventStore interface {
	GetByTitleAndSource(ctx context.Context, title, source string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error)
}

// job is a schedule awaiting translation into a calendar event
type job struct {
	title    string
	schedule string
	source   string
}

// Built-in schedules synchronized on every pass regardless of the crontab
// file's presence.
var builtinJobs = []job{
	{title: "Morning Briefing", schedule: "0 7 * * *", source: models.EventSourceMissionControl},
	{title: "Health Check", schedule: "0 * * * *", source: models.EventSourceMissionControl},
	{title: "Memory Backup", schedule: "0 0 * * *", source: models.EventSourceMissionControl},
	{title: "Email Sync", schedule: "*/15 * * * *", source: models.EventSourceMissionControl},
	{title: "Calendar Sync", schedule: "*/30 * * * *", source: models.EventSourceMissionControl},
}

// Synchronizer reads a crontab-style file and upserts calendar events
type Synchronizer struct {
	crontabPath string
	store       EventStore
	logger      ectologger.Logger
}

// New creates a cron synchronizer for the given crontab file path
func New(crontabPath string, store EventStore, logger ectologger.Logger) *Synchronizer {
	return &Synchronizer{
		crontabPath: crontabPath,
		store:       store,
		logger:      logger,
	}
}

// Result reports a completed synchronization pass. Synced counts the
// schedules processed, crontab-derived plus built-in, not the events
// inserted.
type Result struct {
	Synced int `json:"synced"`
}

// Sync runs one pass: crontab entries first, then the built-in schedules.
// A missing crontab file is zero input, not an error.
func (s *Synchronizer) Sync(ctx context.Context) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "cronsync.Sync")
	defer span.End()

	jobs, err := s.readCrontab(ctx)
	if err != nil {
		return Result{}, err
	}
	jobs = append(jobs, builtinJobs...)

	s.logger.WithContext(ctx).WithField("count", len(jobs)).Info("found cron jobs")

	for _, j := range jobs {
		if err := s.syncJob(ctx, j); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("title", j.title).Error("failed to sync cron job")
		}
	}

	metrics.RecordSyncRun("cron", len(jobs))
	return Result{Synced: len(jobs)}, nil
}

func (s *Synchronizer) readCrontab(ctx context.Context) ([]job, error) {
	file, err := os.Open(s.crontabPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open crontab: %w", err)
	}
	defer file.Close()

	var jobs []job
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			s.logger.WithContext(ctx).WithField("line", line).Warn("skipping malformed crontab line")
			continue
		}

		schedule := strings.Join(fields[:5], " ")
		command := strings.Join(fields[5:], " ")
		jobs = append(jobs, job{
			title:    titleFromCommand(command),
			schedule: schedule,
			source:   models.EventSourceKyberosCrontab,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read crontab: %w", err)
	}

	return jobs, nil
}

// titleFromCommand derives a display title from a crontab command: the base
// name of the command with anything after "&" or ";" stripped and
// underscores shown as spaces.
func titleFromCommand(command string) string {
	if idx := strings.IndexAny(command, "&;"); idx >= 0 {
		command = command[:idx]
	}
	title := filepath.Base(strings.TrimSpace(command))
	title = strings.ReplaceAll(title, "_", " ")
	if title == "" || title == "." || title == "/" {
		return "Cron Job"
	}
	return title
}

func (s *Synchronizer) syncJob(ctx context.Context, j job) error {
	existing, err := s.store.GetByTitleAndSource(ctx, j.title, j.source)
	if err != nil {
		return fmt.Errorf("failed to check for existing event: %w", err)
	}
	if existing != nil {
		return nil
	}

	schedule := ParseExpression(j.schedule)
	recurrence := schedule.Recurrence
	event := &models.CalendarEvent{
		Title:      j.title,
		Time:       schedule.Time,
		Recurrence: &recurrence,
		Status:     "active",
		Source:     j.source,
		Color:      colorForTitle(j.title),
	}

	if _, err := s.store.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}

	s.logger.WithContext(ctx).WithField("title", j.title).WithField("source", j.source).Info("created calendar event")
	return nil
}

// colorForTitle picks a presentation color by keyword
func colorForTitle(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "email"):
		return "green"
	case strings.Contains(lower, "calendar"):
		return "blue"
	case strings.Contains(lower, "health"):
		return "red"
	case strings.Contains(lower, "memory"), strings.Contains(lower, "backup"):
		return "purple"
	case strings.Contains(lower, "briefing"), strings.Contains(lower, "morning"):
		return "orange"
	}
	return "blue"
}
