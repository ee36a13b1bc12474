package repository

import (
	"context"
	"errors"

	"github.com/ticket-mgt/ticket-api/internal/domain"
)

var (
	// ErrNotFound is returned when no record has the requested key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (id or email) is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	// Create stores a new user, failing with ErrDuplicate when the id or email is taken.
	Create(ctx context.Context, user *domain.User) error
	// UpdateToken replaces the active token of a user.
	UpdateToken(ctx context.Context, id, token string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update loads the ticket, hands it to mutate and stores the result in one
	// critical section. Returning an error from mutate aborts the write.
	Update(ctx context.Context, id string, mutate func(*domain.Ticket) error) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// List returns tickets in insertion order.
	List(ctx context.Context) ([]domain.Ticket, error)
	// Delete removes the ticket and returns the removed record.
	Delete(ctx context.Context, id string) (*domain.Ticket, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}
