package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/ticket-mgt/ticket-api/internal/domain"
)

// Document is the persisted layout: two named collections.
type Document struct {
	Users   []UserRecord   `json:"users"`
	Tickets []TicketRecord `json:"tickets"`
}

// UserRecord is the stored shape of a user.
type UserRecord struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Token     string `json:"token,omitempty"`
}

// TicketRecord is the stored shape of a ticket.
type TicketRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DocumentBackend loads and saves the whole document.
type DocumentBackend interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// DocumentStore serializes every read-modify-write cycle on a backend with a
// process-wide mutex.
type DocumentStore struct {
	mu      sync.Mutex
	backend DocumentBackend
}

// NewDocumentStore wraps a backend.
func NewDocumentStore(backend DocumentBackend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// NewMemoryDocumentStore returns a store whose document lives only in process memory.
func NewMemoryDocumentStore() *DocumentStore {
	return NewDocumentStore(&memoryBackend{doc: &Document{}})
}

// NewFileDocumentStore returns a store backed by the JSON file at path.
func NewFileDocumentStore(path string) *DocumentStore {
	return NewDocumentStore(&FileBackend{Path: path})
}

// View runs fn against a snapshot of the document.
func (s *DocumentStore) View(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update runs fn against the document and saves it when fn succeeds.
func (s *DocumentStore) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.backend.Save(ctx, doc)
}

// Ping verifies the backend can be read.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.View(ctx, func(*Document) error { return nil })
}

// Users returns a UserRepository over this document.
func (s *DocumentStore) Users() UserRepository {
	return &documentUserRepository{store: s}
}

// Tickets returns a TicketRepository over this document.
func (s *DocumentStore) Tickets() TicketRepository {
	return &documentTicketRepository{store: s}
}

type memoryBackend struct {
	doc *Document
}

func (m *memoryBackend) Load(_ context.Context) (*Document, error) {
	return m.doc.clone(), nil
}

func (m *memoryBackend) Save(_ context.Context, doc *Document) error {
	m.doc = doc.clone()
	return nil
}

// FileBackend stores the document as indented JSON. A missing file reads as an
// empty document. Comments in the file are tolerated on read and dropped on
// the next write.
type FileBackend struct {
	Path string
}

func (f *FileBackend) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc := &Document{}
	clean := bytes.TrimSpace(jsonc.ToJSON(raw))
	if len(clean) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(clean, doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", f.Path, err)
	}
	return doc, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target so readers never observe a partial document.
func (f *FileBackend) Save(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc.normalized(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".db-*.json")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (d *Document) clone() *Document {
	return &Document{
		Users:   append([]UserRecord(nil), d.Users...),
		Tickets: append([]TicketRecord(nil), d.Tickets...),
	}
}

// normalized keeps empty collections as [] rather than null in the file.
func (d *Document) normalized() *Document {
	out := *d
	if out.Users == nil {
		out.Users = []UserRecord{}
	}
	if out.Tickets == nil {
		out.Tickets = []TicketRecord{}
	}
	return &out
}

func (r UserRecord) toDomain() *domain.User {
	return &domain.User{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Token:     r.Token,
	}
}

func userRecordFrom(u *domain.User) UserRecord {
	return UserRecord{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.Password,
		Token:     u.Token,
	}
}

func (r TicketRecord) toDomain() *domain.Ticket {
	return &domain.Ticket{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TicketStatus(r.Status),
		Priority:    domain.TicketPriority(r.Priority),
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ticketRecordFrom(t *domain.Ticket) TicketRecord {
	return TicketRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
