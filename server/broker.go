package server

import (
	"context"
	"sync"

	"autosnake/game"
)

// broker fans snapshots out to every open page. Each subscriber holds at
// most one pending snapshot; a newer one replaces it, so a slow page never
// holds up the game loop.
type broker struct {
	mu     sync.Mutex
	subs   map[int]chan game.Snapshot
	nextID int
}

func newBroker() *broker {
	return &broker{subs: map[int]chan game.Snapshot{}}
}

// subscribe registers a subscriber until ctx ends, at which point its channel
// is closed. initial is queued right away so a new page does not wait for the
// next tick, which may never come while the game is paused.
func (b *broker) subscribe(ctx context.Context, initial game.Snapshot) <-chan game.Snapshot {
	ch := make(chan game.Snapshot, 1)
	ch <- initial

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		close(ch)
	}()
	return ch
}

func (b *broker) publish(snap game.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		// Drop whatever is pending; only the latest state matters.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (b *broker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
