// Package actor runs independently addressable stateful entities.  A
// Registry maps each key to a single logical instance and executes the
// operations sent to that key one at a time, in the order they were
// enqueued.  Operations on different keys run concurrently.  Entity state
// is therefore only ever touched by one goroutine at a time and needs no
// locking of its own.
package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ActivateFunc builds the state of an entity the first time its key is
// used.  It runs inside the key's turn, so it is serialized with every
// other operation on the key.  A failed activation is reported to the
// caller and attempted again on the next operation.
type ActivateFunc[S any] func(ctx context.Context, key string) (*S, error)

// Op is an operation executed against the state of a single entity.
type Op[S any] func(ctx context.Context, state *S) error

// Option customises a Registry.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sets the logger used for one-way failures and panics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Registry holds every live entity of one kind.
type Registry[S any] struct {
	kind     string
	activate ActivateFunc[S]
	log      *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry[S]
}

type task[S any] struct {
	ctx  context.Context
	op   Op[S]
	done chan error // nil for one-way sends
}

// entry is the mailbox of a single key.  Its worker goroutine only exists
// while the queue is non-empty.
type entry[S any] struct {
	key string

	mu      sync.Mutex
	queue   []task[S]
	running bool

	// state is owned by whichever goroutine is draining the queue.
	state *S
}

// NewRegistry creates a registry for entities of the given kind.  When
// activate is nil every entity starts from its zero value.
func NewRegistry[S any](kind string, activate ActivateFunc[S], opts ...Option) *Registry[S] {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if activate == nil {
		activate = func(context.Context, string) (*S, error) { return new(S), nil }
	}
	return &Registry[S]{
		kind:     kind,
		activate: activate,
		log:      o.log.With("entity", kind),
		entries:  make(map[string]*entry[S]),
	}
}

// Kind returns the entity kind served by the registry.
func (r *Registry[S]) Kind() string { return r.kind }

// Len reports how many keys have been resolved so far.
func (r *Registry[S]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Invoke runs op against the entity identified by key and waits for it
// to finish.  If ctx ends first Invoke returns ctx.Err(); an operation
// that has not started by then is skipped.
func (r *Registry[S]) Invoke(ctx context.Context, key string, op Op[S]) error {
	done := make(chan error, 1)
	r.enqueue(r.resolve(key), task[S]{ctx: ctx, op: op, done: done})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tell enqueues op for key and returns immediately.  The operation runs
// detached from ctx cancellation.  Its error is logged and dropped.  Since
// the enqueue completes before Tell returns, any later Invoke on the same
// key observes the effect of op.
func (r *Registry[S]) Tell(ctx context.Context, key string, op Op[S]) {
	r.enqueue(r.resolve(key), task[S]{ctx: context.WithoutCancel(ctx), op: op})
}

func (r *Registry[S]) resolve(key string) *entry[S] {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry[S]{key: key}
		r.entries[key] = e
	}
	return e
}

func (r *Registry[S]) enqueue(e *entry[S], t task[S]) {
	e.mu.Lock()
	e.queue = append(e.queue, t)
	start := !e.running
	e.running = true
	e.mu.Unlock()
	if start {
		go r.drain(e)
	}
}

func (r *Registry[S]) drain(e *entry[S]) {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.running = false
			e.mu.Unlock()
			return
		}
		t := e.queue[0]
		e.queue[0] = task[S]{}
		e.queue = e.queue[1:]
		e.mu.Unlock()

		err := r.run(e, t)
		if t.done != nil {
			t.done <- err
		} else if err != nil {
			r.log.Warn("one-way operation failed", "key", e.key, "err", err)
		}
	}
}

func (r *Registry[S]) run(e *entry[S], t task[S]) (err error) {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("operation panicked", "key", e.key, "panic", p)
			err = fmt.Errorf("%s %s: panic: %v", r.kind, e.key, p)
		}
	}()
	if e.state == nil {
		s, err := r.activate(t.ctx, e.key)
		if err != nil {
			return fmt.Errorf("activate %s %s: %w", r.kind, e.key, err)
		}
		e.state = s
	}
	return t.op(t.ctx, e.state)
}
