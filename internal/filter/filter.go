// Package filter computes the visible task subset for the active view.
// Predicates apply in a fixed order and each one is skipped when its
// filter is unset, so the net effect is a logical AND of the active
// predicates. Apply is a pure function: same inputs, same output, and
// the source collection is never mutated.
package filter

import (
	"strings"
	"time"

	"github.com/moldworks/moldtrack/internal/model"
)

// View identifies which presentation the pipeline is feeding. The
// timeline-scoped and board-scoped predicates only engage on their own
// view.
type View int

const (
	ViewDashboard View = iota
	ViewTeam
	ViewBoard
	ViewTimeline
	ViewTransfer
	ViewSettings
)

// DateRange selects a due-date window on the timeline view.
type DateRange string

const (
	RangeAll       DateRange = "ALL"
	RangeThisWeek  DateRange = "THIS_WEEK"
	RangeNextWeek  DateRange = "NEXT_WEEK"
	RangeNextMonth DateRange = "NEXT_MONTH"
)

// AllDateRanges lists the selectable due-date windows in display order.
var AllDateRanges = []DateRange{RangeAll, RangeThisWeek, RangeNextWeek, RangeNextMonth}

// DateRangeLabels maps each range to its display string.
var DateRangeLabels = map[DateRange]string{
	RangeAll:       "All",
	RangeThisWeek:  "This Week",
	RangeNextWeek:  "Next Week",
	RangeNextMonth: "Next Month",
}

// Selection holds the current filter state. Zero values mean "no
// filter": an empty (or whitespace-only) query, empty status/phase,
// and the ALL date range all pass everything through.
type Selection struct {
	// View is the active presentation.
	View View

	// Query is matched case-insensitively as a substring of title,
	// mold name, or assignee.
	Query string

	// Status and Phase scope the timeline view only.
	Status model.TaskStatus
	Phase  model.Phase

	// DateRange scopes the timeline view only.
	DateRange DateRange

	// BoardColumn scopes the board view only; set by dashboard
	// drill-through.
	BoardColumn model.TaskStatus
}

// Apply runs the predicate chain over tasks and returns the visible
// subset as a new slice. now anchors the relative date ranges.
func Apply(tasks []model.Task, sel Selection, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))

	query := strings.ToLower(strings.TrimSpace(sel.Query))
	for _, t := range tasks {
		if query != "" && !matchesQuery(t, query) {
			continue
		}
		if sel.View == ViewTimeline {
			if sel.Status != "" && t.Status != sel.Status {
				continue
			}
			if sel.Phase != "" && !hasPhase(t, sel.Phase) {
				continue
			}
			if sel.DateRange != "" && sel.DateRange != RangeAll && !inDateRange(t.DueDate, sel.DateRange, now) {
				continue
			}
		}
		if sel.View == ViewBoard && sel.BoardColumn != "" && t.Status != sel.BoardColumn {
			continue
		}
		out = append(out, t)
	}

	return out
}

// matchesQuery tests the free-text search predicate.
func matchesQuery(t model.Task, query string) bool {
	return strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.MoldName), query) ||
		strings.Contains(strings.ToLower(t.Assignee), query)
}

// hasPhase tests tag membership.
func hasPhase(t model.Task, phase model.Phase) bool {
	for _, tag := range t.Tags {
		if tag == phase {
			return true
		}
	}
	return false
}

// inDateRange reports whether the ISO date string falls inside the
// selected window, inclusive on both ends. An unparseable date never
// matches an active range.
func inDateRange(dateStr string, r DateRange, now time.Time) bool {
	d, err := time.ParseInLocation("2006-01-02", dateStr, now.Location())
	if err != nil {
		return false
	}

	start, end := rangeBounds(r, now)
	return !d.Before(start) && !d.After(end)
}

// rangeBounds computes the window for a date range. Weeks run Monday
// 00:00:00 through Sunday 23:59:59; NEXT_MONTH covers the first
// through last calendar day of the month after now.
func rangeBounds(r DateRange, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch r {
	case RangeThisWeek:
		start := startOfWeek(today)
		return start, endOfWeek(start)
	case RangeNextWeek:
		start := startOfWeek(today).AddDate(0, 0, 7)
		return start, endOfWeek(start)
	case RangeNextMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		end := start.AddDate(0, 1, 0).Add(-time.Second)
		return start, end
	default:
		return time.Time{}, time.Time{}
	}
}

// startOfWeek returns the Monday 00:00:00 of the week containing day.
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0 ... Sunday = 6
	return day.AddDate(0, 0, -offset)
}

// endOfWeek returns the Sunday 23:59:59 of the week starting at monday.
func endOfWeek(monday time.Time) time.Time {
	return monday.AddDate(0, 0, 7).Add(-time.Second)
}
