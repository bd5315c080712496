package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/shared"
)

type testEvent struct {
	name string
	at   time.Time
}

func (e testEvent) EventName() string    { return e.name }
func (e testEvent) OccurredAt() time.Time { return e.at }

func TestDispatcher_DeliversToNamedAndWildcardHandlers(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	var got []string

	d.Register("selection.changed", func(ctx context.Context, event shared.DomainEvent) error {
		got = append(got, "named:"+event.EventName())
		return nil
	})
	d.Register(shared.AllEvents, func(ctx context.Context, event shared.DomainEvent) error {
		got = append(got, "all:"+event.EventName())
		return nil
	})

	assert.NoError(t, d.Dispatch(context.Background(), testEvent{name: "selection.changed"}))
	assert.NoError(t, d.Dispatch(context.Background(), testEvent{name: "search.started"}))

	assert.Equal(t, []string{"named:selection.changed", "all:selection.changed", "all:search.started"}, got)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	calls := 0

	d.Register("x", func(ctx context.Context, event shared.DomainEvent) error {
		calls++
		return errors.New("boom")
	})
	d.Register("x", func(ctx context.Context, event shared.DomainEvent) error {
		calls++
		return nil
	})

	assert.NoError(t, d.Dispatch(context.Background(), testEvent{name: "x"}))
	assert.Equal(t, 2, calls)
}

func TestPublish_NilDispatcher(t *testing.T) {
	assert.NotPanics(t, func() {
		shared.Publish(context.Background(), nil, testEvent{name: "x"})
	})
}
