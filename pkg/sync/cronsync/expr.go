package cronsync

import (
	"fmt"
	"strconv"
	"strings"
)

// Sunday-indexed to match crontab day-of-week numbering
var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Schedule is the display form of a cron expression: a clock time or the raw
// expression, plus a human recurrence label.
type Schedule struct {
	Time       string
	Recurrence string
}

// ParseExpression reduces a 5-field cron expression to a display schedule.
// Only the common shapes get a friendly label; anything else is shown raw as
// a custom schedule.
func ParseExpression(expr string) Schedule {
	fields := strings.Fields(expr)
	if len(fields) < 5 {
		return Schedule{Time: expr, Recurrence: "once"}
	}

	minute, hour, dayOfWeek := fields[0], fields[1], fields[4]

	if minute != "*" && hour != "*" && dayOfWeek == "*" {
		return Schedule{Time: clockTime(hour, minute), Recurrence: "daily"}
	}

	if dayOfWeek != "*" {
		day := dayOfWeek
		if idx, err := strconv.Atoi(dayOfWeek); err == nil && idx >= 0 && idx < len(dayNames) {
			day = dayNames[idx]
		}
		return Schedule{Time: clockTime(hour, minute), Recurrence: fmt.Sprintf("weekly on %s", day)}
	}

	return Schedule{Time: expr, Recurrence: "custom"}
}

func clockTime(hour, minute string) string {
	return fmt.Sprintf("%s:%s", padClock(hour), padClock(minute))
}

func padClock(field string) string {
	if len(field) == 1 {
		return "0" + field
	}
	return field
}
