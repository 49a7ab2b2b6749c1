package resolve

import (
	"sort"
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/kyberos/mission-control/pkg/models"
)

// In-memory equivalents of the repository filters and sort orders. The
// fallback path must shape results the same way the database does so callers
// cannot tell the tiers apart by ordering.

func filterTasks(tasks []models.Task, f models.TaskFilter) []models.Task {
	return ectolinq.Filter(tasks, func(t models.Task) bool {
		if f.Status != "" && string(t.Status) != f.Status {
			return false
		}
		if f.Assignee != "" && t.Assignee != f.Assignee {
			return false
		}
		if f.Priority != "" && string(t.Priority) != f.Priority {
			return false
		}
		return true
	})
}

func sortTasks(tasks []models.Task) []models.Task {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := models.PriorityRank(tasks[i].Priority), models.PriorityRank(tasks[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks
}

func filterContent(items []models.ContentItem, f models.ContentFilter) []models.ContentItem {
	return ectolinq.Filter(items, func(item models.ContentItem) bool {
		return f.Stage == "" || string(item.Stage) == f.Stage
	})
}

func sortContent(items []models.ContentItem) []models.ContentItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

func filterCalendar(events []models.CalendarEvent, f models.CalendarFilter) []models.CalendarEvent {
	return ectolinq.Filter(events, func(e models.CalendarEvent) bool {
		if f.Status != "" && e.Status != f.Status {
			return false
		}
		if f.Source != "" && e.Source != f.Source {
			return false
		}
		return true
	})
}

func sortCalendar(events []models.CalendarEvent) []models.CalendarEvent {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
	return events
}

func filterMemories(memories []models.Memory, f models.MemoryFilter) []models.Memory {
	search := strings.ToLower(f.Search)
	return ectolinq.Filter(memories, func(m models.Memory) bool {
		if f.Type != "" && !strings.EqualFold(string(m.Type), f.Type) {
			return false
		}
		if f.Category != "" && (m.Category == nil || *m.Category != f.Category) {
			return false
		}
		if search != "" {
			inContent := strings.Contains(strings.ToLower(m.Content), search)
			inCategory := m.Category != nil && strings.Contains(strings.ToLower(*m.Category), search)
			if !inContent && !inCategory {
				return false
			}
		}
		return true
	})
}

func sortMemories(memories []models.Memory) []models.Memory {
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].Date.After(memories[j].Date)
	})
	return memories
}

func normalizeMemories(memories []models.Memory) []models.Memory {
	for i := range memories {
		memories[i].Type = models.NormalizeMemoryType(memories[i].Type)
	}
	return memories
}

func filterTeam(members []models.TeamMember, f models.TeamFilter) []models.TeamMember {
	return ectolinq.Filter(members, func(m models.TeamMember) bool {
		if f.Status != "" && string(m.Status) != f.Status {
			return false
		}
		if f.Department != "" && m.Department != f.Department {
			return false
		}
		return true
	})
}

func sortTeam(members []models.TeamMember) []models.TeamMember {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Name < members[j].Name
	})
	return members
}

func sortProjects(projects []models.Project) []models.Project {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects
}
