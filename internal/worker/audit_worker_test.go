package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ticket-mgt/ticket-api/internal/events"
	"github.com/ticket-mgt/ticket-api/internal/service"
)

func TestStartAuditWorker(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	StartAuditWorker(service.NewAuditService(dispatcher, zap.New(core)))
	StartAuditWorker(nil)

	if err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserLoggedIn, SubjectID: "u1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n := logs.FilterMessage(string(events.EventUserLoggedIn)).Len(); n != 1 {
		t.Fatalf("audit lines = %d, want 1", n)
	}
}
