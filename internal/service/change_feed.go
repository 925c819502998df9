package service

import (
	"sync"
	"time"

	"github.com/noah-isme/prospect-portal-api/internal/models"
)

// ChangeKind names the mutation behind a change event.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeReviewed ChangeKind = "reviewed"
	ChangeNotes    ChangeKind = "notes"
	ChangeUpdated  ChangeKind = "updated"
)

// ProspectChange is published after every successful prospect mutation.
type ProspectChange struct {
	ID     string                `json:"id"`
	Kind   ChangeKind            `json:"kind"`
	Status models.ProspectStatus `json:"status"`
	At     time.Time             `json:"at"`
}

// ChangeFeed fans prospect changes out to live subscribers. Subscribers that fall behind
// lose their oldest pending event so the newest one is always delivered.
type ChangeFeed struct {
	mu     sync.Mutex
	subs   map[uint64]chan ProspectChange
	next   uint64
	buffer int
}

// NewChangeFeed builds a feed whose subscriptions hold up to buffer pending events.
func NewChangeFeed(buffer int) *ChangeFeed {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChangeFeed{subs: make(map[uint64]chan ProspectChange), buffer: buffer}
}

// Subscribe registers a subscriber. The returned cancel func closes the channel and is idempotent.
func (f *ChangeFeed) Subscribe() (<-chan ProspectChange, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	ch := make(chan ProspectChange, f.buffer)
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
}

// Publish delivers change to every subscriber without blocking.
func (f *ChangeFeed) Publish(change ProspectChange) {
	if f == nil {
		return
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- change:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- change:
		default:
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (f *ChangeFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
