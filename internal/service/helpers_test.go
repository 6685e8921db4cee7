package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/idgen"
	"github.com/chernandez90/InsurancePortal/internal/repository"
	"github.com/chernandez90/InsurancePortal/pkg/database"
	"github.com/chernandez90/InsurancePortal/pkg/pubsub"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func newClaimRepo(t *testing.T) *repository.GormClaimRepository {
	t.Helper()
	gen, err := idgen.New(idgen.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return repository.NewGormClaimRepository(newTestDB(t), gen)
}

type notification struct {
	event   string
	payload string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
	err    error
}

func (n *recordingNotifier) BroadcastToAll(_ context.Context, event, payload string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, notification{event: event, payload: payload})
	return nil
}

func (n *recordingNotifier) sent() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.events...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, event *pubsub.Event) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if channel != pubsub.ChannelClaimEvents {
		return fmt.Errorf("unexpected channel %q", channel)
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []*pubsub.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*pubsub.Event(nil), p.events...)
}

// failingClaimRepo fails every write.
type failingClaimRepo struct {
	repository.ClaimRepository
}

var errStoreDown = errors.New("store unavailable")

func (failingClaimRepo) Create(context.Context, *domain.Claim) error {
	return errStoreDown
}
