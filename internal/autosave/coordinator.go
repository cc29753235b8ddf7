// Package autosave persists field-level profile edits without an explicit
// save action. Each edit session owns one Coordinator: edits apply to the
// in-memory state immediately, a single debounce timer batches everything
// changed during the quiet window into one partial persistence request, and
// a failed request rolls the affected fields back to their last confirmed
// baseline.
package autosave

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultDebounce is the quiet period after the last edit before a
	// save is attempted. Fixed business rule.
	DefaultDebounce = 1500 * time.Millisecond
	// DefaultFlushTimeout bounds each persistence attempt.
	DefaultFlushTimeout = 5 * time.Second
)

// PersistFunc performs the partial update carrying only changed fields.
type PersistFunc func(ctx context.Context, fields map[string]any) error

// EventKind classifies coordinator notifications.
type EventKind int

const (
	// EventSaved confirms a flush; the pending fields became the baseline.
	EventSaved EventKind = iota
	// EventRolledBack reports a failed flush; fields reverted to baseline.
	EventRolledBack
)

// Event is the lightweight signal surfaced after each flush attempt. The
// delivery layer turns these into user notifications.
type Event struct {
	Kind   EventKind
	Fields []string
	Err    error
}

// Listener receives flush outcomes. Called outside the coordinator lock.
type Listener func(Event)

// Coordinator debounces and persists edits for one profile session.
// Safe for concurrent use.
type Coordinator struct {
	mu       sync.Mutex
	state    map[string]any // optimistic view, what the UI shows
	baseline map[string]any // last server-confirmed values, rollback target
	pending  map[string]any // edits waiting for the next flush
	timer    *time.Timer
	closed   bool

	persist  PersistFunc
	listener Listener
	debounce time.Duration
	timeout  time.Duration
	log      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounce overrides the quiet window. Used by tests.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = d }
}

// WithFlushTimeout overrides the per-attempt persistence timeout.
func WithFlushTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func WithListener(l Listener) Option {
	return func(c *Coordinator) { c.listener = l }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// New creates a coordinator seeded with the server-confirmed field values.
// The seed map is copied; it becomes both the initial state and the first
// baseline.
func New(seed map[string]any, persist PersistFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		state:    make(map[string]any, len(seed)),
		baseline: make(map[string]any, len(seed)),
		pending:  make(map[string]any),
		persist:  persist,
		debounce: DefaultDebounce,
		timeout:  DefaultFlushTimeout,
		log:      slog.Default(),
	}
	for k, v := range seed {
		c.state[k] = v
		c.baseline[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScheduleSave applies the edit optimistically and (re)starts the debounce
// timer. Edits to "socialLinks.<sub>" merge into the nested socialLinks
// object, and the whole object is queued, since it persists as one record.
// All edits made during one quiet window flush as a single request.
func (c *Coordinator) ScheduleSave(field string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if sub, ok := strings.CutPrefix(field, "socialLinks."); ok {
		links := c.mergeSocialLink(sub, value)
		c.state["socialLinks"] = links
		c.pending["socialLinks"] = links
	} else {
		c.state[field] = value
		c.pending[field] = value
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.flushAsync)
}

// mergeSocialLink folds one sub-field into a copy of the current
// socialLinks object. Caller holds the lock.
func (c *Coordinator) mergeSocialLink(sub string, value any) map[string]any {
	links := make(map[string]any)
	if cur, ok := c.state["socialLinks"].(map[string]any); ok {
		for k, v := range cur {
			links[k] = v
		}
	}
	links[sub] = value
	return links
}

// Flush persists pending edits immediately, bypassing the timer. Used on
// explicit save and before navigation away.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	batch := c.takeBatch()
	c.mu.Unlock()
	if batch == nil {
		return nil
	}
	return c.doFlush(ctx, batch)
}

// Cancel stops any pending save and discards unflushed edits. Must be
// called on session teardown so an abandoned session cannot write later.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = make(map[string]any)
	c.closed = true
}

// Snapshot returns a copy of the optimistic state.
func (c *Coordinator) Snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.state))
	for k, v := range c.state {
		out[k] = v
	}
	return out
}

// Field returns the optimistic value of a single field.
func (c *Coordinator) Field(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.state[name]
	return v, ok
}

func (c *Coordinator) flushAsync() {
	c.mu.Lock()
	batch := c.takeBatch()
	c.mu.Unlock()
	if batch == nil {
		return
	}
	_ = c.doFlush(context.Background(), batch)
}

// takeBatch detaches the pending edits for a flush attempt. Caller holds
// the lock. Returns nil when there is nothing to do.
func (c *Coordinator) takeBatch() map[string]any {
	if c.closed || len(c.pending) == 0 {
		return nil
	}
	batch := c.pending
	c.pending = make(map[string]any)
	return batch
}

// doFlush runs the persistence request outside the lock, retrying once, and
// then either promotes the batch to the baseline or rolls it back. Each
// attempt gets its own timeout, so a retry after a timed-out first attempt
// still has a full window to succeed.
func (c *Coordinator) doFlush(ctx context.Context, batch map[string]any) error {
	err := c.attempt(ctx, batch)
	if err != nil {
		c.log.Warn("autosave flush failed, retrying once", "error", err)
		err = c.attempt(ctx, batch)
	}

	fields := make([]string, 0, len(batch))
	for k := range batch {
		fields = append(fields, k)
	}

	c.mu.Lock()
	if err != nil {
		// Roll back to the baseline captured before these edits, unless a
		// newer edit to the same field is already queued.
		for k := range batch {
			if _, reedited := c.pending[k]; reedited {
				continue
			}
			if base, ok := c.baseline[k]; ok {
				c.state[k] = base
			} else {
				delete(c.state, k)
			}
		}
	} else {
		for k, v := range batch {
			c.baseline[k] = v
		}
	}
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		if err != nil {
			listener(Event{Kind: EventRolledBack, Fields: fields, Err: err})
		} else {
			listener(Event{Kind: EventSaved, Fields: fields})
		}
	}
	if err != nil {
		c.log.Error("autosave flush rolled back", "fields", fields, "error", err)
	}
	return err
}

func (c *Coordinator) attempt(parent context.Context, batch map[string]any) error {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()
	return c.persist(ctx, batch)
}
