// Package fetch runs API calls for console pages and tracks their
// loading/errored/data state.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// GenericMessage is shown when a failure carries no message of its own.
const GenericMessage = "Bir hata oluştu. Lütfen tekrar deneyin."

// Func loads the data for one fetch cycle.
type Func[T any] func(ctx context.Context) (T, error)

// PayloadCarrier is implemented by errors that embed a structured response body.
type PayloadCarrier interface {
	Payload() any
}

// MessageCarrier is implemented by errors whose response body holds a
// message meant for the user. An empty string means there is none.
type MessageCarrier interface {
	BodyMessage() string
}

// State is the tri-state of a fetch. Data is only meaningful when
// neither Loading nor Errored is set.
type State[T any] struct {
	Loading      bool
	Errored      bool
	Data         T
	Err          error
	ErrorPayload any
}

// Ready reports whether Data holds a successful result.
func (s State[T]) Ready() bool {
	return !s.Loading && !s.Errored && s.Err == nil
}

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	enabled bool
}

// WithEnabled sets whether the fetcher dispatches on mount and dependency changes.
// Fetchers are enabled by default.
func WithEnabled(enabled bool) Option {
	return func(o *options) {
		o.enabled = enabled
	}
}

// Fetcher invokes a Func on mount, on dependency change and on demand.
// Only the most recent dispatch may commit its result; earlier in-flight
// calls are cancelled and their results discarded.
type Fetcher[T any] struct {
	fn Func[T]

	mu      sync.Mutex
	enabled bool
	mounted bool
	stale   bool
	closed  bool
	deps    []any
	seq     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	state   State[T]
	subs    map[int]chan State[T]
	nextSub int
}

// New creates a Fetcher for fn. Nothing runs until Mount.
func New[T any](fn Func[T], opts ...Option) *Fetcher[T] {
	o := options{enabled: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Fetcher[T]{
		fn:      fn,
		enabled: o.enabled,
		subs:    make(map[int]chan State[T]),
	}
}

// Mount records deps and dispatches the first call when enabled.
func (f *Fetcher[T]) Mount(ctx context.Context, deps ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.mounted = true
	f.deps = append([]any(nil), deps...)
	f.stale = true
	if f.enabled {
		f.dispatchLocked(ctx)
	}
}

// Update compares deps with the previous list and dispatches when any value
// changed. It returns true when a new cycle started.
func (f *Fetcher[T]) Update(ctx context.Context, deps ...any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mounted && sameDeps(f.deps, deps) {
		return false
	}
	f.mounted = true
	f.deps = append([]any(nil), deps...)
	f.stale = true
	if !f.enabled {
		return false
	}
	return f.dispatchLocked(ctx)
}

// SetEnabled toggles the fetcher. Enabling a mounted fetcher whose current deps
// were never fetched dispatches immediately.
func (f *Fetcher[T]) SetEnabled(ctx context.Context, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.enabled = enabled
	if enabled && f.mounted && f.stale {
		f.dispatchLocked(ctx)
	}
}

// Refetch replays the call with the current deps. It is a no-op while disabled.
func (f *Fetcher[T]) Refetch(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.enabled || !f.mounted {
		return false
	}
	return f.dispatchLocked(ctx)
}

// State returns a snapshot of the current state.
func (f *Fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Wait blocks until no cycle is in flight and returns the settled state.
func (f *Fetcher[T]) Wait(ctx context.Context) (State[T], error) {
	for {
		f.mu.Lock()
		st, done := f.state, f.done
		f.mu.Unlock()

		if !st.Loading || done == nil {
			return st, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// Subscribe returns a channel receiving every state transition. Slow readers
// miss intermediate states rather than blocking the fetcher. Call the returned
// func to unsubscribe.
func (f *Fetcher[T]) Subscribe(buffer int) (<-chan State[T], func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan State[T], buffer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(c)
		}
	}
}

// Close cancels any in-flight call and stops further dispatches.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	if f.state.Loading {
		f.state = State[T]{}
	}
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

func (f *Fetcher[T]) dispatchLocked(parent context.Context) bool {
	if f.closed {
		return false
	}
	if f.cancel != nil {
		f.cancel()
	}

	f.seq++
	seq := f.seq
	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel
	f.stale = false

	if f.done == nil {
		f.done = make(chan struct{})
	}
	f.state = State[T]{Loading: true}
	f.notifyLocked()

	go f.run(ctx, cancel, seq)
	return true
}

func (f *Fetcher[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64) {
	defer cancel()

	data, err := f.call(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || seq != f.seq {
		return
	}

	if err != nil {
		f.state = State[T]{Errored: true, Err: err, ErrorPayload: payloadOf(err)}
	} else {
		f.state = State[T]{Data: data}
	}
	f.cancel = nil
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	f.notifyLocked()
}

func (f *Fetcher[T]) call(ctx context.Context) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return f.fn(ctx)
}

func (f *Fetcher[T]) notifyLocked() {
	for _, ch := range f.subs {
		select {
		case ch <- f.state:
		default:
		}
	}
}

// payloadOf surfaces the structured body of err when there is one,
// otherwise the raw error.
func payloadOf(err error) any {
	var pc PayloadCarrier
	if errors.As(err, &pc) {
		if p := pc.Payload(); p != nil {
			return p
		}
	}
	return err
}

// ErrorMessage returns the text to show for err: the structured message from
// the response body when present, otherwise GenericMessage.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var mc MessageCarrier
	if errors.As(err, &mc) {
		if m := mc.BodyMessage(); m != "" {
			return m
		}
	}
	return GenericMessage
}

// sameDeps is a shallow, element-wise comparison. Comparable values use ==;
// slices, maps and funcs compare by identity.
func sameDeps(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameValue(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameValue(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}
