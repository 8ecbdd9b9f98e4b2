package sched

import (
	"container/heap"
	"sync"
	"time"
)

// Loop is the production scheduler: one goroutine drains posted work,
// due timers, and the frame queue at the configured cadence.
type Loop struct {
	cfg Config

	mu       sync.Mutex
	frames   []func()
	timers   timerHeap
	timerSeq uint64

	posts chan func()
	wake  chan struct{}
	quit  chan struct{}
	done  chan struct{}

	stopOnce sync.Once
}

type loopTimer struct {
	due time.Time
	fn  func()
	seq uint64
}

type timerHeap []loopTimer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)        { *h = append(*h, x.(loopTimer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NewLoop constructs a stopped loop with defaults applied.
func NewLoop(cfg Config) *Loop {
	return &Loop{
		cfg:   cfg.WithDefaults(),
		posts: make(chan func(), 64),
		wake:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the owner goroutine.
func (l *Loop) Start() {
	go l.run()
}

// Stop terminates the loop and waits for the owner goroutine to exit.
// Pending callbacks are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.quit) })
	<-l.done
}

func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	select {
	case l.posts <- fn:
	case <-l.quit:
	}
}

func (l *Loop) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
}

func (l *Loop) After(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.timerSeq++
	heap.Push(&l.timers, loopTimer{due: time.Now().Add(d), fn: fn, seq: l.timerSeq})
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) RunAsap(fn func()) {
	if l.cfg.Engine == EngineWebKit {
		l.After(l.cfg.AsapDelay, fn)
		return
	}
	l.RequestFrame(fn)
}

func (l *Loop) run() {
	defer close(l.done)
	ticker := time.NewTicker(l.cfg.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.quit:
			return
		case fn := <-l.posts:
			fn()
		case <-l.wake:
			l.fireDueTimers()
		case <-ticker.C:
			l.fireDueTimers()
			l.runFrameBatch()
		}
	}
}

// fireDueTimers runs every timer whose deadline has passed, in order.
func (l *Loop) fireDueTimers() {
	now := time.Now()
	for {
		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].due.After(now) {
			l.mu.Unlock()
			return
		}
		item := heap.Pop(&l.timers).(loopTimer)
		l.mu.Unlock()
		item.fn()
	}
}

// runFrameBatch runs the frame callbacks queued before this tick.
// Callbacks enqueued during the batch land on the next tick.
func (l *Loop) runFrameBatch() {
	l.mu.Lock()
	batch := l.frames
	l.frames = nil
	l.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
}
