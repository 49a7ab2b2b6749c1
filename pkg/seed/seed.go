// Package seed loads the starter dashboard data set and runs both
// filesystem synchronizers. Seeding is idempotent: every record is either
// keyed or guarded by an emptiness check, so restarts with SEED_ON_START
// enabled do not duplicate data.
package seed

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/kyberos/mission-control/internal/repositories/calendarevent"
	"github.com/kyberos/mission-control/internal/repositories/content"
	"github.com/kyberos/mission-control/internal/repositories/memory"
	"github.com/kyberos/mission-control/internal/repositories/task"
	"github.com/kyberos/mission-control/internal/repositories/teammember"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/sync/cronsync"
	"github.com/kyberos/mission-control/pkg/sync/memorysync"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// Seeder loads starter records into an empty database
type Seeder struct {
	tasks    *task.Repository
	content  *content.Repository
	calendar *calendarevent.Repository
	memories *memory.Repository
	team     *teammember.Repository
	memSync  *memorysync.Synchronizer
	cronSync *cronsync.Synchronizer
	logger   ectologger.Logger
}

// New creates a seeder
func New(
	tasks *task.Repository,
	contentItems *content.Repository,
	calendar *calendarevent.Repository,
	memories *memory.Repository,
	team *teammember.Repository,
	memSync *memorysync.Synchronizer,
	cronSync *cronsync.Synchronizer,
	logger ectologger.Logger,
) *Seeder {
	return &Seeder{
		tasks:    tasks,
		content:  contentItems,
		calendar: calendar,
		memories: memories,
		team:     team,
		memSync:  memSync,
		cronSync: cronSync,
		logger:   logger,
	}
}

// Run seeds every collection and then runs both synchronizers
func (s *Seeder) Run(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "seed.Run")
	defer span.End()

	if err := s.seedTeam(ctx); err != nil {
		return err
	}
	if err := s.seedTasks(ctx); err != nil {
		return err
	}
	if err := s.seedContent(ctx); err != nil {
		return err
	}
	if err := s.seedCalendar(ctx); err != nil {
		return err
	}
	if err := s.seedMemories(ctx); err != nil {
		return err
	}

	if _, err := s.memSync.Sync(ctx); err != nil {
		return fmt.Errorf("memory sync during seed failed: %w", err)
	}
	if _, err := s.cronSync.Sync(ctx); err != nil {
		return fmt.Errorf("cron sync during seed failed: %w", err)
	}

	s.logger.WithContext(ctx).Info("database seeded")
	return nil
}

// Team members carry fixed identifiers so the seed upserts instead of
// duplicating on restart.
func (s *Seeder) seedTeam(ctx context.Context) error {
	members := []models.TeamMember{
		{ID: "seed-andrew", Name: "Andrew Napier", Role: "CEO", Department: "Leadership", Avatar: "👨‍💼", CurrentTask: "Strategic Planning", Status: models.AgentStatusWorking, Responsibilities: "Company vision, partnerships, fundraising"},
		{ID: "seed-claw", Name: "Claw Agent", Role: "AI Assistant", Department: "Operations", Avatar: "🤖", CurrentTask: "Task Automation", Status: models.AgentStatusWorking, Responsibilities: "Automation, data processing, scheduling"},
		{ID: "seed-katarina", Name: "Katarina Root", Role: "Sales Lead", Department: "Sales", Avatar: "👩‍💼", CurrentTask: "Pipeline Review", Status: models.AgentStatusIdle, Responsibilities: "Enterprise sales, demos"},
		{ID: "seed-matt", Name: "Matt M", Role: "Account Executive", Department: "Sales", Avatar: "👨‍💻", CurrentTask: "Client Calls", Status: models.AgentStatusWorking, Responsibilities: "SMB accounts, follow-ups"},
	}

	for i := range members {
		if err := s.team.Upsert(ctx, &members[i]); err != nil {
			return fmt.Errorf("failed to seed team member %q: %w", members[i].Name, err)
		}
	}
	return nil
}

func (s *Seeder) seedTasks(ctx context.Context) error {
	existing, err := s.tasks.List(ctx, models.TaskFilter{})
	if err != nil {
		return fmt.Errorf("failed to check existing tasks: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seeds := []models.Task{
		{Title: "Review Q1 pipeline", Description: ptr("Go through all leads and update status"), Assignee: "ANDREW", Status: models.TaskStatusTodo, Priority: models.TaskPriorityHigh},
		{Title: "Update HubSpot contacts", Description: ptr("Sync latest contact changes"), Assignee: "CLAW", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityMedium},
		{Title: "Morning briefing prep", Description: ptr("Prepare for daily standup"), Assignee: "ANDREW", Status: models.TaskStatusDone, Priority: models.TaskPriorityHigh},
		{Title: "Review pilot expirations", Description: ptr("Check pilots expiring in 14 days"), Assignee: "CLAW", Status: models.TaskStatusTodo, Priority: models.TaskPriorityUrgent},
		{Title: "Email triage", Description: ptr("Process VIP emails"), Assignee: "ANDREW", Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium},
		{Title: "Calendar sync", Description: ptr("Ensure all calendars aligned"), Assignee: "CLAW", Status: models.TaskStatusDone, Priority: models.TaskPriorityLow},
	}

	for i := range seeds {
		if _, err := s.tasks.Create(ctx, &seeds[i]); err != nil {
			return fmt.Errorf("failed to seed task %q: %w", seeds[i].Title, err)
		}
	}
	return nil
}

func (s *Seeder) seedContent(ctx context.Context) error {
	existing, err := s.content.List(ctx, models.ContentFilter{})
	if err != nil {
		return fmt.Errorf("failed to check existing content: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seeds := []models.ContentItem{
		{Title: "IntuBlade Demo Video", Stage: models.ContentStageFilming, Notes: ptr("Need to schedule filming session")},
		{Title: "Product Update Announcement", Stage: models.ContentStageScript, Script: ptr("Draft 1 complete")},
		{Title: "Customer Testimonial - Montgomery County", Stage: models.ContentStagePublished, Notes: ptr("Published on website")},
		{Title: "New Feature Launch", Stage: models.ContentStageIdea, Notes: ptr("Planning stage")},
		{Title: "Tutorial Series", Stage: models.ContentStageThumbnail, Notes: ptr("Thumbnail designs ready")},
	}

	for i := range seeds {
		if _, err := s.content.Create(ctx, &seeds[i]); err != nil {
			return fmt.Errorf("failed to seed content item %q: %w", seeds[i].Title, err)
		}
	}
	return nil
}

// Calendar seeds share the synchronizers' (title, source) natural key so
// they are individually skippable.
func (s *Seeder) seedCalendar(ctx context.Context) error {
	seeds := []models.CalendarEvent{
		{Title: "Daily Standup", Time: "09:00", Recurrence: ptr("weekday"), Source: "google", Color: "blue"},
		{Title: "Team Sync", Time: "14:00", Recurrence: ptr("tuesday"), Source: "google", Color: "green"},
		{Title: "Focus Block", Time: "10:00", Recurrence: ptr("daily"), Source: models.EventSourceManual, Color: "purple"},
		{Title: "Review Meetings", Time: "16:00", Recurrence: ptr("friday"), Source: "google", Color: "yellow"},
	}

	for i := range seeds {
		existing, err := s.calendar.GetByTitleAndSource(ctx, seeds[i].Title, seeds[i].Source)
		if err != nil {
			return fmt.Errorf("failed to check existing event %q: %w", seeds[i].Title, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.calendar.Create(ctx, &seeds[i]); err != nil {
			return fmt.Errorf("failed to seed event %q: %w", seeds[i].Title, err)
		}
	}
	return nil
}

// Memory seeds use their source tag as the natural key
func (s *Seeder) seedMemories(ctx context.Context) error {
	existing, err := s.memories.List(ctx, models.MemoryFilter{})
	if err != nil {
		return fmt.Errorf("failed to check existing memories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seeds := []models.Memory{
		{Type: models.MemoryTypePreference, Content: "Prefers morning meetings before 11am", Category: ptr("work"), Source: "learned"},
		{Type: models.MemoryTypeLearning, Content: "Vietnamese: Maximum 1-2 words per conversation for learning", Category: ptr("language"), Source: "preference"},
		{Type: models.MemoryTypeDecision, Content: "Use Supabase for KyberOS data storage", Category: ptr("technical"), Source: "decision"},
		{Type: models.MemoryTypePerson, Content: "Zach Adams - Montgomery County EMS POC", Category: ptr("contact"), Source: "crm"},
	}

	for i := range seeds {
		if _, err := s.memories.Create(ctx, &seeds[i]); err != nil {
			return fmt.Errorf("failed to seed memory %q: %w", seeds[i].Source, err)
		}
	}
	return nil
}

func ptr(s string) *string {
	return &s
}
