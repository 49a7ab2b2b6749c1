package cronsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyberos/mission-control/pkg/models"
)

type fakeEventStore struct {
	byKey   map[string]*models.CalendarEvent
	created []*models.CalendarEvent
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{byKey: map[string]*models.CalendarEvent{}}
}

func (f *fakeEventStore) key(title, source string) string {
	return title + "|" + source
}

func (f *fakeEventStore) GetByTitleAndSource(ctx context.Context, title, source string) (*models.CalendarEvent, error) {
	return f.byKey[f.key(title, source)], nil
}

func (f *fakeEventStore) Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	event.ID = fmt.Sprintf("e-%d", len(f.created)+1)
	f.byKey[f.key(event.Title, event.Source)] = event
	f.created = append(f.created, event)
	return event, nil
}

func (f *fakeEventStore) find(title string) *models.CalendarEvent {
	for _, e := range f.created {
		if e.Title == title {
			return e
		}
	}
	return nil
}

func newTestSynchronizer(t *testing.T, crontab string) (*Synchronizer, *fakeEventStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crontab")
	if crontab != "" {
		require.NoError(t, os.WriteFile(path, []byte(crontab), 0644))
	}
	store := newFakeEventStore()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return New(path, store, logger), store
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		expr       string
		time       string
		recurrence string
	}{
		{"0 7 * * *", "07:00", "daily"},
		{"30 9 * * *", "09:30", "daily"},
		{"0 0 * * 1", "00:00", "weekly on Monday"},
		{"15 18 * * 5", "18:15", "weekly on Friday"},
		{"0 8 * * 9", "08:00", "weekly on 9"},
		{"*/15 * * * *", "*/15 * * * *", "custom"},
		{"0 * * * *", "0 * * * *", "custom"},
		{"@reboot", "@reboot", "once"},
		{"0 7", "0 7", "once"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			schedule := ParseExpression(tt.expr)
			assert.Equal(t, tt.time, schedule.Time)
			assert.Equal(t, tt.recurrence, schedule.Recurrence)
		})
	}
}

func TestSync_BuiltinsOnlyWhenCrontabAbsent(t *testing.T) {
	sync, store := newTestSynchronizer(t, "")

	result, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Synced)
	assert.Len(t, store.created, 5)

	// Second pass processes the same 5 schedules without inserting.
	result, err = sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Synced)
	assert.Len(t, store.created, 5)
}

func TestSync_CrontabEntries(t *testing.T) {
	crontab := `# kyberos maintenance
0 7 * * * /usr/local/bin/daily_report
*/10 * * * * /opt/scripts/sync_mail && echo done

30 8 * * 1 /opt/scripts/weekly_review; logger ok
`
	sync, store := newTestSynchronizer(t, crontab)

	result, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, result.Synced)
	assert.Len(t, store.created, 8)

	report := store.find("daily report")
	require.NotNil(t, report)
	assert.Equal(t, "07:00", report.Time)
	require.NotNil(t, report.Recurrence)
	assert.Equal(t, "daily", *report.Recurrence)
	assert.Equal(t, models.EventSourceKyberosCrontab, report.Source)
	assert.Equal(t, "active", report.Status)

	mail := store.find("sync mail")
	require.NotNil(t, mail)
	assert.Equal(t, "*/10 * * * *", mail.Time)
	require.NotNil(t, mail.Recurrence)
	assert.Equal(t, "custom", *mail.Recurrence)

	review := store.find("weekly review")
	require.NotNil(t, review)
	assert.Equal(t, "08:30", review.Time)
	require.NotNil(t, review.Recurrence)
	assert.Equal(t, "weekly on Monday", *review.Recurrence)
}

func TestSync_ColorsByKeyword(t *testing.T) {
	sync, store := newTestSynchronizer(t, "")

	_, err := sync.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "orange", store.find("Morning Briefing").Color)
	assert.Equal(t, "red", store.find("Health Check").Color)
	assert.Equal(t, "purple", store.find("Memory Backup").Color)
	assert.Equal(t, "green", store.find("Email Sync").Color)
	assert.Equal(t, "blue", store.find("Calendar Sync").Color)
}

func TestTitleFromCommand(t *testing.T) {
	assert.Equal(t, "daily report", titleFromCommand("/usr/local/bin/daily_report"))
	assert.Equal(t, "backup", titleFromCommand("/opt/backup && echo ok"))
	assert.Equal(t, "cleanup", titleFromCommand("cleanup; logger done"))
	assert.Equal(t, "Cron Job", titleFromCommand(""))
	assert.Equal(t, "Cron Job", titleFromCommand("&& echo"))
}
