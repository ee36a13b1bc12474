package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/ticket-mgt/ticket-api/internal/domain"
	"github.com/ticket-mgt/ticket-api/internal/events"
	"github.com/ticket-mgt/ticket-api/internal/repository"
	apperrors "github.com/ticket-mgt/ticket-api/pkg/util"
)

// TicketService is the ticket store: CRUD with validation and timestamps.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// TicketCreateInput describes ticket creation payload. Empty status and
// priority fall back to "open" and "medium".
type TicketCreateInput struct {
	Title       string
	Description string
	Status      domain.TicketStatus
	Priority    domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// ListTickets returns all tickets in insertion order.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("ticket")
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// CreateTicket stores a new ticket on behalf of creatorID, which may be empty.
func (s *TicketService) CreateTicket(ctx context.Context, creatorID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required")
	}

	status := domain.TicketStatus(strings.TrimSpace(string(input.Status)))
	if status == "" {
		status = domain.TicketStatusOpen
	}
	priority := domain.TicketPriority(strings.TrimSpace(string(input.Priority)))
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	now := s.stamp(time.Time{})
	ticket := &domain.Ticket{
		ID:          ulid.Make().String(),
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		ActorID:   creatorID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Status:   ticket.Status,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// UpdateTicket applies a partial update. Title and description are trimmed and
// must stay non-empty; updatedAt always advances.
func (s *TicketService) UpdateTicket(ctx context.Context, actorID, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	fields, err := normalizePatch(&patch)
	if err != nil {
		return nil, err
	}

	var oldStatus domain.TicketStatus
	ticket, err := s.tickets.Update(ctx, id, func(t *domain.Ticket) error {
		oldStatus = t.Status
		prev := t.UpdatedAt
		if t.CreatedAt.After(prev) {
			prev = t.CreatedAt
		}
		t.Apply(patch, s.stamp(prev))
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("ticket")
	}
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	payload := events.TicketUpdatedPayload{Fields: fields}
	if patch.Status != nil && oldStatus != ticket.Status {
		payload.OldStatus = oldStatus
		payload.NewStatus = ticket.Status
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventTicketUpdated,
		SubjectID: ticket.ID,
		ActorID:   actorID,
		Payload:   payload,
	})
	return ticket, nil
}

// DeleteTicket removes a ticket and returns it.
func (s *TicketService) DeleteTicket(ctx context.Context, actorID, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("ticket")
	}
	if err != nil {
		return nil, fmt.Errorf("delete ticket: %w", err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventTicketDeleted,
		SubjectID: ticket.ID,
		ActorID:   actorID,
		Payload:   events.TicketDeletedPayload{Title: ticket.Title},
	})
	return ticket, nil
}

// stamp returns the current time, nudged past prev so that successive
// mutations always produce a strictly later timestamp. Microsecond precision
// matches what Postgres stores.
func (s *TicketService) stamp(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

// normalizePatch trims text fields in place and reports which fields are set.
func normalizePatch(patch *domain.TicketPatch) ([]string, error) {
	var fields []string
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty")
		}
		patch.Title = &title
		fields = append(fields, "title")
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description cannot be empty")
		}
		patch.Description = &description
		fields = append(fields, "description")
	}
	if patch.Status != nil {
		fields = append(fields, "status")
	}
	if patch.Priority != nil {
		fields = append(fields, "priority")
	}
	return fields, nil
}
