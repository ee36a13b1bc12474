package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ticket-mgt/ticket-api/internal/domain"
)

func storesUnderTest(t *testing.T) map[string]*DocumentStore {
	t.Helper()
	return map[string]*DocumentStore{
		"memory": NewMemoryDocumentStore(),
		"file":   NewFileDocumentStore(filepath.Join(t.TempDir(), "data", "db.json")),
	}
}

func sampleTicket(id string, at time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:          id,
		Title:       "title " + id,
		Description: "description " + id,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		CreatedBy:   "u1",
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestDocumentUsers(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			users := store.Users()

			alice := &domain.User{ID: "u1", FirstName: "A", LastName: "X", Email: "a@x.com", Password: "h", Token: "t1"}
			bob := &domain.User{ID: "u2", FirstName: "B", LastName: "Y", Email: "b@x.com", Password: "h", Token: "t2"}
			for _, u := range []*domain.User{alice, bob} {
				if err := users.Create(ctx, u); err != nil {
					t.Fatalf("Create(%s): %v", u.ID, err)
				}
			}

			dupEmail := &domain.User{ID: "u3", Email: "a@x.com"}
			if err := users.Create(ctx, dupEmail); !errors.Is(err, ErrDuplicate) {
				t.Fatalf("duplicate email err = %v", err)
			}

			got, err := users.GetByEmail(ctx, "b@x.com")
			if err != nil || got.ID != "u2" {
				t.Fatalf("GetByEmail = %+v, %v", got, err)
			}
			if _, err := users.GetByEmail(ctx, "B@X.COM"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("email lookup should be exact, err = %v", err)
			}

			if err := users.UpdateToken(ctx, "u1", "t1b"); err != nil {
				t.Fatalf("UpdateToken: %v", err)
			}
			if _, err := users.GetByToken(ctx, "t1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("old token still resolves, err = %v", err)
			}
			got, err = users.GetByToken(ctx, "t1b")
			if err != nil || got.ID != "u1" {
				t.Fatalf("GetByToken = %+v, %v", got, err)
			}
			if _, err := users.GetByToken(ctx, ""); !errors.Is(err, ErrNotFound) {
				t.Fatalf("empty token lookup err = %v", err)
			}
			if err := users.UpdateToken(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("UpdateToken(missing) err = %v", err)
			}

			list, err := users.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 2 || list[0].ID != "u1" || list[1].ID != "u2" {
				t.Fatalf("List = %+v", list)
			}
		})
	}
}

func TestDocumentTickets(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tickets := store.Tickets()
			at := time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.UTC)

			for _, id := range []string{"a", "b", "c"} {
				if err := tickets.Create(ctx, sampleTicket(id, at)); err != nil {
					t.Fatalf("Create(%s): %v", id, err)
				}
			}
			if err := tickets.Create(ctx, sampleTicket("a", at)); !errors.Is(err, ErrDuplicate) {
				t.Fatalf("duplicate id err = %v", err)
			}

			got, err := tickets.GetByID(ctx, "b")
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if !got.CreatedAt.Equal(at) || got.CreatedBy != "u1" {
				t.Fatalf("GetByID = %+v", got)
			}

			later := at.Add(time.Second)
			updated, err := tickets.Update(ctx, "b", func(t *domain.Ticket) error {
				t.Status = "closed"
				t.UpdatedAt = later
				t.ID = "hijacked"
				return nil
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if updated.ID != "b" || updated.Status != "closed" {
				t.Fatalf("Update = %+v", updated)
			}

			boom := errors.New("boom")
			_, err = tickets.Update(ctx, "c", func(t *domain.Ticket) error {
				t.Title = "never saved"
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("mutate error not returned: %v", err)
			}
			if got, _ := tickets.GetByID(ctx, "c"); got.Title != "title c" {
				t.Fatalf("failed mutation was persisted: %+v", got)
			}
			if _, err := tickets.Update(ctx, "missing", func(*domain.Ticket) error { return nil }); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Update(missing) err = %v", err)
			}

			removed, err := tickets.Delete(ctx, "a")
			if err != nil || removed.ID != "a" {
				t.Fatalf("Delete = %+v, %v", removed, err)
			}
			if _, err := tickets.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("second Delete err = %v", err)
			}

			list, err := tickets.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 2 || list[0].ID != "b" || list[1].ID != "c" {
				t.Fatalf("List = %+v", list)
			}
			if !list[0].UpdatedAt.Equal(later) {
				t.Fatalf("updatedAt = %v, want %v", list[0].UpdatedAt, later)
			}
		})
	}
}

func TestMemoryBackendIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	if err := store.Tickets().Create(ctx, sampleTicket("a", time.Now().UTC())); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, _ := store.Tickets().List(ctx)
	list[0].Title = "mutated outside the store"

	got, _ := store.Tickets().GetByID(ctx, "a")
	if got.Title != "title a" {
		t.Fatalf("caller mutation leaked into the store: %q", got.Title)
	}
}

func TestFileBackend_MissingAndBlankFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing := NewFileDocumentStore(filepath.Join(dir, "nope.json"))
	if err := missing.Ping(ctx); err != nil {
		t.Fatalf("missing file should read as empty: %v", err)
	}
	list, err := missing.Tickets().List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("List = %+v, %v", list, err)
	}

	blank := filepath.Join(dir, "blank.json")
	if err := os.WriteFile(blank, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if users, err := NewFileDocumentStore(blank).Users().List(ctx); err != nil || len(users) != 0 {
		t.Fatalf("blank file List = %+v, %v", users, err)
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`{"users": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewFileDocumentStore(broken).Ping(ctx); err == nil {
		t.Fatalf("expected decode error for broken document")
	}
}

func TestFileBackend_ToleratesCommentsAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	seed := `{
  // seeded by hand
  "users": [
    {"id": "u1", "firstName": "A", "lastName": "X", "email": "a@x.com", "password": "pw1", "token": "tok"},
  ],
  "tickets": []
}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileDocumentStore(path)
	user, err := store.Users().GetByToken(ctx, "tok")
	if err != nil || user.ID != "u1" {
		t.Fatalf("GetByToken = %+v, %v", user, err)
	}
	if err := store.Tickets().Create(ctx, sampleTicket("t1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string][]map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("saved document is not plain JSON: %v\n%s", err, raw)
	}
	if len(doc["users"]) != 1 || len(doc["tickets"]) != 1 {
		t.Fatalf("saved document = %s", raw)
	}
	if doc["tickets"][0]["createdAt"] != "2024-01-01T00:00:00Z" {
		t.Fatalf("createdAt = %v", doc["tickets"][0]["createdAt"])
	}

	reopened := NewFileDocumentStore(path)
	if got, err := reopened.Tickets().GetByID(ctx, "t1"); err != nil || got.Title != "title t1" {
		t.Fatalf("reopened GetByID = %+v, %v", got, err)
	}
}

func TestFileBackend_EmptyCollectionsAreArrays(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	store := NewFileDocumentStore(path)

	if err := store.Tickets().Create(ctx, sampleTicket("a", time.Now().UTC())); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Tickets().Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if string(doc["users"]) != "[]" || string(doc["tickets"]) != "[]" {
		t.Fatalf("document = %s", raw)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestDocumentStore_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	store := NewFileDocumentStore(filepath.Join(t.TempDir(), "db.json"))
	tickets := store.Tickets()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			if err := tickets.Create(ctx, sampleTicket(id, time.Now().UTC())); err != nil {
				t.Errorf("Create(%s): %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	list, err := tickets.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != n {
		t.Fatalf("len = %d, want %d: lost writes", len(list), n)
	}
}

func TestFileBackend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewFileDocumentStore(filepath.Join(t.TempDir(), "db.json"))
	if err := store.Ping(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Ping err = %v, want context.Canceled", err)
	}
}
