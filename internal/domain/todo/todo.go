package todo

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("todo not found")
	ErrDuplicateTitle = errors.New("todo title already used by this owner")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const DefaultPriority = PriorityHigh

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Todo struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateParams is what a handler hands to a store. Optional fields are nil
// when the client left them out; New resolves the defaults.
type CreateParams struct {
	Owner       string
	Title       string
	Description string
	Priority    *Priority
	StartDate   *time.Time
	EndDate     *time.Time
}

// New builds a record from params with defaults applied at time now. The id is
// left for the store to assign.
func New(p CreateParams, now time.Time) Todo {
	t := Todo{
		Owner:       p.Owner,
		Title:       p.Title,
		Description: p.Description,
		Priority:    DefaultPriority,
		StartDate:   now,
		EndDate:     now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if p.Priority != nil && *p.Priority != "" {
		t.Priority = *p.Priority
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}

	return t
}

// UpdateParams overwrites title and description; every other field is only
// touched when set.
type UpdateParams struct {
	Title       string
	Description string
	Priority    *Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *bool
}

// Apply returns t with the update applied and UpdatedAt bumped to now.
func (p UpdateParams) Apply(t Todo, now time.Time) Todo {
	t.Title = p.Title
	t.Description = p.Description

	if p.Priority != nil && *p.Priority != "" {
		t.Priority = *p.Priority
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}

	t.UpdatedAt = now
	return t
}
