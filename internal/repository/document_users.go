package repository

import (
	"context"

	"github.com/ticket-mgt/ticket-api/internal/domain"
)

type documentUserRepository struct {
	store *DocumentStore
}

func (r *documentUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.store.Update(ctx, func(doc *Document) error {
		for _, existing := range doc.Users {
			if existing.ID == user.ID || existing.Email == user.Email {
				return ErrDuplicate
			}
		}
		doc.Users = append(doc.Users, userRecordFrom(user))
		return nil
	})
}

func (r *documentUserRepository) UpdateToken(ctx context.Context, id, token string) error {
	return r.store.Update(ctx, func(doc *Document) error {
		for i := range doc.Users {
			if doc.Users[i].ID == id {
				doc.Users[i].Token = token
				return nil
			}
		}
		return ErrNotFound
	})
}

func (r *documentUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u UserRecord) bool { return u.ID == id })
}

func (r *documentUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, func(u UserRecord) bool { return u.Email == email })
}

func (r *documentUserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.find(ctx, func(u UserRecord) bool { return u.Token == token })
}

func (r *documentUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.store.View(ctx, func(doc *Document) error {
		users = make([]domain.User, 0, len(doc.Users))
		for _, rec := range doc.Users {
			users = append(users, *rec.toDomain())
		}
		return nil
	})
	return users, err
}

func (r *documentUserRepository) find(ctx context.Context, match func(UserRecord) bool) (*domain.User, error) {
	var user *domain.User
	err := r.store.View(ctx, func(doc *Document) error {
		for _, rec := range doc.Users {
			if match(rec) {
				user = rec.toDomain()
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
