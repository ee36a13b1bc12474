package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcher_RoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var created, deleted int
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error { created++; return nil })
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error { deleted++; return nil })

	ctx := context.Background()
	for _, typ := range []EventType{EventTicketCreated, EventTicketCreated, EventTicketDeleted, EventUserLoggedIn} {
		if err := d.Publish(ctx, Event{Type: typ}); err != nil {
			t.Fatalf("Publish(%s): %v", typ, err)
		}
	}
	if created != 2 || deleted != 1 {
		t.Fatalf("created = %d, deleted = %d", created, deleted)
	}
}

func TestDispatcher_RunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	first := errors.New("first")
	second := errors.New("second")
	var calls int
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error { calls++; return first })
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error { calls++; return nil })
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error { calls++; return second })

	err := d.Publish(context.Background(), Event{Type: EventUserRegistered})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("err = %v, want both handler errors", err)
	}
}

func TestDispatcher_AnyEventAndPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []EventType
	d.Subscribe(EventTicketUpdated, func(context.Context, Event) error { panic("bad handler") })
	d.Subscribe(AnyEvent, func(_ context.Context, e Event) error { seen = append(seen, e.Type); return nil })

	ctx := context.Background()
	err := d.Publish(ctx, Event{Type: EventTicketUpdated})
	if err == nil {
		t.Fatalf("panic not reported")
	}
	if err := d.Publish(ctx, Event{Type: EventUserRegistered}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(seen) != 2 || seen[0] != EventTicketUpdated || seen[1] != EventUserRegistered {
		t.Fatalf("wildcard saw %v", seen)
	}
}
