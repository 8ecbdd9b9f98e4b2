package logging

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultQueueSize bounds the in-memory log queue. The guest runs inside
// somebody else's page, so log history must stay small.
const DefaultQueueSize = 200

// Entry is one captured log line.
type Entry struct {
	Time    time.Time     `json:"time"`
	Level   zerolog.Level `json:"level"`
	Message string        `json:"message"`
}

// Queue is a bounded ring of recent log lines. It implements
// zerolog.Hook so every logger built on the global logger feeds it; the
// debug query param exposes it through the admin server.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{entries: make([]Entry, size)}
}

// Run implements zerolog.Hook.
func (q *Queue) Run(_ *zerolog.Event, level zerolog.Level, message string) {
	if level == zerolog.NoLevel || message == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[q.next] = Entry{Time: time.Now(), Level: level, Message: message}
	q.next++
	if q.next == len(q.entries) {
		q.next = 0
		q.full = true
	}
}

// Entries returns captured lines oldest-first.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.full {
		out := make([]Entry, q.next)
		copy(out, q.entries[:q.next])
		return out
	}
	out := make([]Entry, 0, len(q.entries))
	out = append(out, q.entries[q.next:]...)
	out = append(out, q.entries[:q.next]...)
	return out
}
