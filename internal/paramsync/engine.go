package paramsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/wave/internal/form"
	"github.com/muurk/wave/internal/logging"
	"github.com/muurk/wave/internal/painter"
)

var (
	// ErrNotMounted is returned until Mount has succeeded
	ErrNotMounted = errors.New("engine not mounted")

	// ErrAlreadyMounted is returned by a second Mount
	ErrAlreadyMounted = errors.New("engine already mounted")

	// ErrClosed is returned after Close
	ErrClosed = errors.New("engine closed")
)

// Remote is the device endpoint. *device.Client implements it.
type Remote interface {
	GetParams(ctx context.Context) (painter.Params, error)
	PostParams(ctx context.Context, params painter.Params) error
}

// State is the engine lifecycle state
type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateEditing
	StateIdle
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateEditing:
		return "editing"
	case StateIdle:
		return "idle"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Engine synchronises a form with a Remote
type Engine struct {
	cfg    Config
	remote Remote

	mu       sync.Mutex
	form     *form.Controller
	touched  bool // an edit happened since mount
	pending  int
	mounting bool // a Mount is waiting on the initial read
	closed   bool

	history *SnapshotStore

	unsubscribe  func()
	dispatchDone chan struct{}
	writes       sync.WaitGroup

	eventsMu sync.RWMutex
	events   chan Event
	evClosed bool
}

// New creates an unmounted engine
func New(remote Remote, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:     cfg,
		remote:  remote,
		history: NewSnapshotStore(cfg.HistorySize),
		events:  make(chan Event, cfg.EventBuffer),
	}
}

// Mode returns the configured sync mode
func (e *Engine) Mode() Mode {
	return e.cfg.Mode
}

// Painters returns the painter enumeration offered to the operator
func (e *Engine) Painters() []painter.Option {
	return e.cfg.Painters
}

// Events delivers status events. Events are dropped when nobody reads.
// The channel is closed by Close.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Mount reads the remote params and builds the form. On failure the
// engine stays uninitialized and the error is returned. The read runs
// without holding the engine lock, so State and Close stay responsive
// while it is outstanding.
func (e *Engine) Mount(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.form != nil || e.mounting {
		e.mu.Unlock()
		return ErrAlreadyMounted
	}
	e.mounting = true
	e.mu.Unlock()

	params, err := e.remote.GetParams(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.mounting = false

	// Closed while the read was outstanding: nothing gets installed.
	if e.closed {
		logging.Debug("Engine closed during mount", zap.String("endpoint", e.cfg.Endpoint))
		return ErrClosed
	}

	if err != nil {
		logging.Error("Initial params read failed",
			zap.String("endpoint", e.cfg.Endpoint),
			zap.Error(err),
		)
		e.emit(Event{Type: EventMountFailed, Err: err})
		return fmt.Errorf("mount: %w", err)
	}

	fc := form.NewController(form.Options{Strict: e.cfg.Strict})
	if err := fc.Load(params); err != nil {
		e.emit(Event{Type: EventMountFailed, Err: err})
		return fmt.Errorf("mount: %w", err)
	}
	_, seq := fc.Snapshot()
	e.history.Add(params, seq, "mount")

	if e.cfg.Mode == ModeLive {
		changes, cancel := fc.Subscribe(e.cfg.EventBuffer)
		e.unsubscribe = cancel
		e.dispatchDone = make(chan struct{})
		go e.dispatch(changes)
	}
	e.form = fc

	logging.Info("Engine mounted",
		zap.String("endpoint", e.cfg.Endpoint),
		zap.String("mode", string(e.cfg.Mode)),
		zap.String("painter", params.Painter),
	)
	e.emit(Event{Type: EventMounted, Seq: seq})
	return nil
}

// Form returns the form controller, or ErrNotMounted before Mount.
func (e *Engine) Form() (*form.Controller, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.form == nil {
		return nil, ErrNotMounted
	}
	return e.form, nil
}

// State reports the lifecycle state. Editing means the device may not
// hold the working copy yet: unsaved edits in manual mode, writes in
// flight in live mode.
func (e *Engine) State() State {
	e.mu.Lock()
	fc, touched, pending := e.form, e.touched, e.pending
	e.mu.Unlock()

	if fc == nil {
		return StateUninitialized
	}
	if e.cfg.Mode == ModeLive {
		if pending > 0 {
			return StateEditing
		}
		if !touched {
			return StateLoaded
		}
		return StateIdle
	}

	if !e.Dirty() {
		if !touched {
			return StateLoaded
		}
		return StateIdle
	}
	return StateEditing
}

// Dirty reports whether the working copy differs from the last known
// remote state.
func (e *Engine) Dirty() bool {
	fc, err := e.Form()
	if err != nil {
		return false
	}
	last, ok := e.history.Latest()
	if !ok {
		return true
	}
	return !fc.Value().Equal(last.Params)
}

// Pending returns the number of writes in flight
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// LastRemote returns the last state the device is known to hold
func (e *Engine) LastRemote() (painter.Params, error) {
	last, ok := e.history.Latest()
	if !ok {
		return painter.Params{}, ErrNotMounted
	}
	return last.Params, nil
}

// History returns the retained acknowledged snapshots, oldest first
func (e *Engine) History() []Snapshot {
	return e.history.All()
}

// Save writes the working copy once and waits for the result. On success
// the working copy becomes the last known remote state.
func (e *Engine) Save(ctx context.Context) error {
	fc, err := e.usableForm()
	if err != nil {
		return err
	}
	params, seq := fc.Snapshot()
	e.markTouched()
	return e.write(ctx, params, seq, "save")
}

// Load discards local edits by restoring the last known remote state.
// No network I/O happens and no write is triggered.
func (e *Engine) Load() error {
	fc, err := e.usableForm()
	if err != nil {
		return err
	}
	last, ok := e.history.Latest()
	if !ok {
		return ErrNotMounted
	}
	if err := fc.Load(last.Params); err != nil {
		return err
	}
	e.markTouched()
	logging.Info("Working copy restored", zap.Uint64("from_seq", last.Seq))
	e.emit(Event{Type: EventRestored, Seq: last.Seq})
	return nil
}

// Reload reads the device again and replaces the working copy.
func (e *Engine) Reload(ctx context.Context) error {
	fc, err := e.usableForm()
	if err != nil {
		return err
	}
	params, err := e.remote.GetParams(ctx)
	if err != nil {
		logging.Warn("Params reload failed", zap.String("endpoint", e.cfg.Endpoint), zap.Error(err))
		return fmt.Errorf("reload: %w", err)
	}
	if err := fc.Load(params); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	_, seq := fc.Snapshot()
	e.history.Add(params, seq, "reload")
	e.markTouched()
	e.emit(Event{Type: EventReloaded, Seq: seq})
	return nil
}

// Close stops live sync and waits for writes in flight. It does not
// cancel them. A Mount still waiting on its read is not awaited; it
// returns ErrClosed once the read completes.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	unsubscribe, done := e.unsubscribe, e.dispatchDone
	e.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		<-done
	}
	e.writes.Wait()

	e.eventsMu.Lock()
	e.evClosed = true
	close(e.events)
	e.eventsMu.Unlock()
	return nil
}

// dispatch turns form changes into writes. Loads are not echoed back.
func (e *Engine) dispatch(changes <-chan form.Change) {
	defer close(e.dispatchDone)

	for change := range changes {
		if change.Cause == form.CauseLoad {
			continue
		}
		e.markTouched()

		e.mu.Lock()
		e.pending++
		e.writes.Add(1)
		e.mu.Unlock()

		go func(change form.Change) {
			defer e.writes.Done()

			ctx := context.Background()
			if e.cfg.WriteTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, e.cfg.WriteTimeout)
				defer cancel()
			}
			_ = e.write(ctx, change.Params, change.Seq, change.Cause.String()+" "+change.Path)

			e.mu.Lock()
			e.pending--
			e.mu.Unlock()
		}(change)
	}
}

func (e *Engine) write(ctx context.Context, params painter.Params, seq uint64, description string) error {
	writeID := uuid.NewString()
	e.emit(Event{Type: EventWriteStarted, Seq: seq, WriteID: writeID})

	start := time.Now()
	err := e.remote.PostParams(ctx, params)
	logging.LogParamsWrite(writeID, seq, e.cfg.Endpoint, time.Since(start), err)
	if err != nil {
		e.emit(Event{Type: EventWriteFailed, Seq: seq, WriteID: writeID, Err: err})
		return fmt.Errorf("write: %w", err)
	}

	if !e.history.Add(params, seq, description) {
		logging.Debug("Stale acknowledgement ignored",
			zap.String("write_id", writeID),
			zap.Uint64("seq", seq),
		)
	}
	e.emit(Event{Type: EventWriteSucceeded, Seq: seq, WriteID: writeID})
	return nil
}

func (e *Engine) usableForm() (*form.Controller, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if e.form == nil {
		return nil, ErrNotMounted
	}
	return e.form, nil
}

func (e *Engine) markTouched() {
	e.mu.Lock()
	e.touched = true
	e.mu.Unlock()
}

// emit never blocks; a full channel drops the event.
func (e *Engine) emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if ev.Type != EventMounted && ev.Type != EventMountFailed {
		ev.Pending = e.Pending()
	}

	e.eventsMu.RLock()
	defer e.eventsMu.RUnlock()
	if e.evClosed {
		return
	}
	select {
	case e.events <- ev:
	default:
		logging.Debug("Event channel full, dropping event", zap.Stringer("type", ev.Type))
	}
}
