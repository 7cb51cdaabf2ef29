package todo

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type Tab string

const (
	TabAll       Tab = "all"
	TabUpcoming  Tab = "upcoming"
	TabOngoing   Tab = "ongoing"
	TabOverdue   Tab = "overdue"
	TabCompleted Tab = "completed"
)

type SortField string

const (
	SortByStartDate SortField = "startDate"
	SortByUpdatedAt SortField = "updatedAt"
)

var ErrInvalidPriorityFilter = errors.New("priority filter must be a JSON array of strings")

// Filter is a conjunction; nil fields do not constrain. A non-nil empty
// Priorities matches nothing.
type Filter struct {
	Owner string

	StartAfter      *time.Time
	StartAtOrBefore *time.Time
	EndAtOrAfter    *time.Time
	EndBefore       *time.Time
	Status          *bool
	Priorities      []Priority
}

type Sort struct {
	Field SortField
	Desc  bool
}

type ListQuery struct {
	Filter Filter
	Sort   Sort
}

// BuildListQuery maps the list parameters to a filter and sort order. It does
// no I/O; now is the reference instant for the time based tabs.
func BuildListQuery(owner string, tab Tab, priorities []Priority, order string, now time.Time) ListQuery {
	f := Filter{Owner: owner}

	switch tab {
	case TabUpcoming:
		f.StartAfter = &now
	case TabOngoing:
		f.StartAtOrBefore = &now
		f.EndAtOrAfter = &now
	case TabOverdue:
		f.EndBefore = &now
	case TabCompleted:
		done := true
		f.Status = &done
	}

	if priorities != nil {
		f.Priorities = priorities
	}

	var s Sort
	switch order {
	case "latest":
		s = Sort{Field: SortByStartDate}
	case "oldest":
		s = Sort{Field: SortByUpdatedAt, Desc: true}
	default:
		s = Sort{Field: SortByUpdatedAt}
	}

	return ListQuery{Filter: f, Sort: s}
}

// ParsePriorities decodes the priority query parameter, e.g. ["low","high"].
// An absent parameter means no restriction and returns nil; "[]" returns an
// empty, non-nil slice that selects no todos.
func ParsePriorities(raw string) ([]Priority, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	out := []Priority{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, ErrInvalidPriorityFilter
	}
	if out == nil {
		// "null"
		return nil, nil
	}

	return out, nil
}

// Matches evaluates the filter against a single record.
func (f Filter) Matches(t Todo) bool {
	if t.Owner != f.Owner {
		return false
	}
	if f.StartAfter != nil && !t.StartDate.After(*f.StartAfter) {
		return false
	}
	if f.StartAtOrBefore != nil && t.StartDate.After(*f.StartAtOrBefore) {
		return false
	}
	if f.EndAtOrAfter != nil && t.EndDate.Before(*f.EndAtOrAfter) {
		return false
	}
	if f.EndBefore != nil && !t.EndDate.Before(*f.EndBefore) {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priorities != nil {
		found := false
		for _, p := range f.Priorities {
			if t.Priority == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Less orders a before b under s.
func (s Sort) Less(a, b Todo) bool {
	var ka, kb time.Time
	switch s.Field {
	case SortByStartDate:
		ka, kb = a.StartDate, b.StartDate
	default:
		ka, kb = a.UpdatedAt, b.UpdatedAt
	}

	if s.Desc {
		return ka.After(kb)
	}
	return ka.Before(kb)
}
