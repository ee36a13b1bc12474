package domain

import "time"

// TicketStatus is a free-form lifecycle label.
type TicketStatus string

// TicketPriority is a free-form urgency label.
type TicketPriority string

const (
	TicketStatusOpen     TicketStatus   = "open"
	TicketPriorityMedium TicketPriority = "medium"
)

// Ticket is a support request.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketPatch carries a partial update; nil fields are left untouched.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *TicketStatus
	Priority    *TicketPriority
}

// Apply overwrites the fields present in the patch and stamps updatedAt.
func (t *Ticket) Apply(patch TicketPatch, updatedAt time.Time) {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	t.UpdatedAt = updatedAt
}
