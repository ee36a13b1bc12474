package repository

import (
	"context"

	"github.com/ticket-mgt/ticket-api/internal/domain"
)

type documentTicketRepository struct {
	store *DocumentStore
}

func (r *documentTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.store.Update(ctx, func(doc *Document) error {
		if indexOfTicket(doc, ticket.ID) >= 0 {
			return ErrDuplicate
		}
		doc.Tickets = append(doc.Tickets, ticketRecordFrom(ticket))
		return nil
	})
}

func (r *documentTicketRepository) Update(ctx context.Context, id string, mutate func(*domain.Ticket) error) (*domain.Ticket, error) {
	var updated *domain.Ticket
	err := r.store.Update(ctx, func(doc *Document) error {
		idx := indexOfTicket(doc, id)
		if idx < 0 {
			return ErrNotFound
		}
		ticket := doc.Tickets[idx].toDomain()
		if err := mutate(ticket); err != nil {
			return err
		}
		ticket.ID = id
		doc.Tickets[idx] = ticketRecordFrom(ticket)
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *documentTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := r.store.View(ctx, func(doc *Document) error {
		idx := indexOfTicket(doc, id)
		if idx < 0 {
			return ErrNotFound
		}
		ticket = doc.Tickets[idx].toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *documentTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	err := r.store.View(ctx, func(doc *Document) error {
		tickets = make([]domain.Ticket, 0, len(doc.Tickets))
		for _, rec := range doc.Tickets {
			tickets = append(tickets, *rec.toDomain())
		}
		return nil
	})
	return tickets, err
}

func (r *documentTicketRepository) Delete(ctx context.Context, id string) (*domain.Ticket, error) {
	var removed *domain.Ticket
	err := r.store.Update(ctx, func(doc *Document) error {
		idx := indexOfTicket(doc, id)
		if idx < 0 {
			return ErrNotFound
		}
		removed = doc.Tickets[idx].toDomain()
		doc.Tickets = append(doc.Tickets[:idx], doc.Tickets[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func indexOfTicket(doc *Document, id string) int {
	for i := range doc.Tickets {
		if doc.Tickets[i].ID == id {
			return i
		}
	}
	return -1
}
