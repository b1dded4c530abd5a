package analytics

import (
	"context"
	"testing"
	"time"
)

func TestCollectorTrackAfterCloseDropsEvent(t *testing.T) {
	t.Parallel()

	c := NewCollector(nil, 4)
	c.Start(context.Background())
	c.Close()

	// A rebuild finishing during shutdown still reports its event; it
	// must be dropped, never panic the process.
	c.Track(QueryEvent{Type: EventSearch, Query: "late"})
	c.Track(RebuildEvent{Type: EventRebuild, DocsIndexed: 1})
}

func TestCollectorCloseIdempotent(t *testing.T) {
	t.Parallel()

	c := NewCollector(nil, 4)
	c.Start(context.Background())
	c.Close()
	c.Close()
}

func TestCollectorCloseWaitsForDrainLoop(t *testing.T) {
	t.Parallel()

	c := NewCollector(nil, 4)
	c.Start(context.Background())

	finished := make(chan struct{})
	go func() {
		c.Close()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the drain loop exited")
	}
}

func TestCollectorTrackNeverBlocks(t *testing.T) {
	t.Parallel()

	// Nothing drains the channel; the second event overflows the buffer
	// and must be dropped rather than block the request path.
	c := NewCollector(nil, 1)
	done := make(chan struct{})
	go func() {
		c.Track(QueryEvent{Query: "first"})
		c.Track(QueryEvent{Query: "second"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Track blocked on a full buffer")
	}
}
