package form

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/wave/internal/colorconv"
	"github.com/muurk/wave/internal/logging"
	"github.com/muurk/wave/internal/painter"
)

// Cause identifies which operation produced a Change.
type Cause int

const (
	CauseLoad Cause = iota
	CauseSet
	CauseAppend
	CauseRemove
)

// String returns the operation name.
func (c Cause) String() string {
	switch c {
	case CauseLoad:
		return "load"
	case CauseSet:
		return "set"
	case CauseAppend:
		return "append"
	case CauseRemove:
		return "remove"
	default:
		return fmt.Sprintf("Cause(%d)", int(c))
	}
}

// Change is published after every successful mutation.
type Change struct {
	// Seq increases by one with every mutation of the controller
	Seq uint64

	Cause Cause

	// Path is the edited path for CauseSet, the affected list entry for
	// CauseAppend and CauseRemove, and empty for CauseLoad
	Path string

	// Params is the full working copy after the mutation
	Params painter.Params
}

// Options configures a Controller.
type Options struct {
	// Strict panics on invalid paths and indices instead of logging them.
	Strict bool
}

type subscription struct {
	ch   chan Change
	done chan struct{}
	once sync.Once
}

// Controller owns the working copy of the painter parameters.
type Controller struct {
	opts Options

	mu     sync.Mutex
	params painter.Params // SecondaryColors lives in colors
	colors *ColorList
	seq    uint64

	// deliverMu orders notifications; it is taken before mu is released
	deliverMu sync.Mutex
	subs      map[int]*subscription
	nextSub   int
}

// NewController returns an empty controller. Call Load before editing.
func NewController(opts Options) *Controller {
	return &Controller{
		opts:   opts,
		colors: NewColorList(nil),
		subs:   make(map[int]*subscription),
	}
}

// Subscribe registers for change notifications. buffer sizes the channel.
// The returned function unsubscribes and closes the channel.
func (c *Controller) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 0 {
		buffer = 0
	}
	sub := &subscription{
		ch:   make(chan Change, buffer),
		done: make(chan struct{}),
	}

	c.deliverMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = sub
	c.deliverMu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			close(sub.done)
			c.deliverMu.Lock()
			delete(c.subs, id)
			close(sub.ch)
			c.deliverMu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Load replaces the whole working copy, rebuilding the secondary list.
func (c *Controller) Load(p painter.Params) error {
	if err := checkLoadable(p); err != nil {
		return err
	}

	c.mu.Lock()
	c.params = p.Clone()
	c.params.SecondaryColors = nil
	c.colors.Reset(p.SecondaryColors)
	c.publishLocked(CauseLoad, "")
	return nil
}

// LoadJSON decodes a device payload and loads it. The working copy is
// untouched when the payload is malformed.
func (c *Controller) LoadJSON(data []byte) error {
	p, err := painter.Decode(data)
	if err != nil {
		return err
	}
	return c.Load(p)
}

// Value returns a deep copy of the working copy.
func (c *Controller) Value() painter.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Snapshot returns the working copy together with the sequence number of
// the change that produced it.
func (c *Controller) Snapshot() (painter.Params, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(), c.seq
}

// Seq returns the sequence number of the latest change.
func (c *Controller) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// ColorCount returns the number of secondary colors.
func (c *Controller) ColorCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.colors.Len()
}

// Get returns the current value at path.
func (c *Controller) Get(path string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, c.violation("get", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.colorAtLocked(p)
	if err != nil {
		return nil, c.violation("get", path, err)
	}
	switch p.Kind() {
	case KindChannel:
		v, _ := col.Channel(p.Channel)
		return v, nil
	case KindColor:
		return col, nil
	}

	switch p.Field {
	case FieldPainter:
		return c.params.Painter, nil
	case FieldGlobalBrightness:
		return c.params.GlobalBrightness, nil
	case FieldSpeed:
		return c.params.Speed, nil
	case FieldFade:
		return c.params.Fade, nil
	default:
		return c.params.Bidirectional, nil
	}
}

// SetField sets the leaf at path to value.
//
// Scalars take Go strings, bools and numbers; channels take integers
// within 0-255; color paths take a painter.Color.
func (c *Controller) SetField(path string, value any) error {
	p, err := ParsePath(path)
	if err != nil {
		return c.violation("set", path, err)
	}

	c.mu.Lock()
	if err := c.applyLocked(p, value); err != nil {
		c.mu.Unlock()
		if IsContractViolation(err) {
			return c.violation("set", path, err)
		}
		logging.Debug("Form edit rejected", zap.String("path", path), zap.Error(err))
		return err
	}
	c.publishLocked(CauseSet, p.String())
	return nil
}

// SetFieldText parses text for the kind of field at path and sets it.
// Color paths accept any color text colorconv understands.
func (c *Controller) SetFieldText(path, text string) error {
	p, err := ParsePath(path)
	if err != nil {
		return c.violation("set", path, err)
	}
	value, err := parseText(p, text)
	if err != nil {
		logging.Debug("Form edit rejected", zap.String("path", path), zap.Error(err))
		return err
	}
	return c.SetField(path, value)
}

// SetColorText binds picker output to a color path. Unparseable text
// leaves the previous color in place.
func (c *Controller) SetColorText(path, text string) error {
	p, err := ParsePath(path)
	if err != nil {
		return c.violation("set", path, err)
	}
	if p.Kind() != KindColor {
		return c.violation("set", path, fmt.Errorf("%w: %s is not a color", ErrInvalidPath, path))
	}
	col, err := colorconv.ToColor(text)
	if err != nil {
		logging.Debug("Picker text rejected", zap.String("path", path), zap.Error(err))
		return err
	}
	return c.SetField(path, col)
}

// AppendColor adds a black secondary color and returns its index.
func (c *Controller) AppendColor() int {
	c.mu.Lock()
	idx := c.colors.Append()
	c.publishLocked(CauseAppend, ColorPath(idx))
	return idx
}

// RemoveColorAt removes one secondary color, preserving the order of the
// rest.
func (c *Controller) RemoveColorAt(index int) error {
	c.mu.Lock()
	if err := c.colors.RemoveAt(index); err != nil {
		c.mu.Unlock()
		return c.violation("remove", ColorPath(index), err)
	}
	c.publishLocked(CauseRemove, ColorPath(index))
	return nil
}

func (c *Controller) applyLocked(p Path, value any) error {
	switch p.Kind() {
	case KindChannel:
		ch, err := coerceChannel(p, value)
		if err != nil {
			return err
		}
		col, err := c.colorAtLocked(p)
		if err != nil {
			return err
		}
		col, _ = col.WithChannel(p.Channel, ch)
		return c.setColorLocked(p, col)

	case KindColor:
		col, err := coerceColor(p, value)
		if err != nil {
			return err
		}
		if _, err := c.colorAtLocked(p); err != nil {
			return err
		}
		return c.setColorLocked(p, col)

	case KindString:
		s, ok := value.(string)
		if !ok || s == "" {
			return fmt.Errorf("%w: %s wants a non-empty string, got %T", ErrInvalidValue, p, value)
		}
		c.params.Painter = s
		return nil

	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s wants a bool, got %T", ErrInvalidValue, p, value)
		}
		c.params.Bidirectional = b
		return nil
	}

	f, err := coerceNumber(p, value)
	if err != nil {
		return err
	}
	switch p.Field {
	case FieldGlobalBrightness:
		c.params.GlobalBrightness = f
	case FieldSpeed:
		c.params.Speed = f
	case FieldFade:
		c.params.Fade = f
	}
	return nil
}

func (c *Controller) colorAtLocked(p Path) (painter.Color, error) {
	switch p.Field {
	case FieldColor:
		return c.params.Color, nil
	case FieldSecondaryColors:
		col, err := c.colors.At(p.Index)
		if err != nil {
			return painter.Color{}, fmt.Errorf("%w: %s: %w", ErrInvalidPath, p, err)
		}
		return col, nil
	}
	return painter.Color{}, nil
}

func (c *Controller) setColorLocked(p Path, col painter.Color) error {
	if p.Field == FieldColor {
		c.params.Color = col
		return nil
	}
	if err := c.colors.Set(p.Index, col); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPath, p, err)
	}
	return nil
}

func (c *Controller) snapshotLocked() painter.Params {
	out := c.params.Clone()
	out.SecondaryColors = c.colors.Values()
	return out
}

// publishLocked must be called with mu held; it releases mu.
func (c *Controller) publishLocked(cause Cause, path string) {
	c.seq++
	change := Change{
		Seq:    c.seq,
		Cause:  cause,
		Path:   path,
		Params: c.snapshotLocked(),
	}
	c.deliverMu.Lock()
	c.mu.Unlock()
	defer c.deliverMu.Unlock()

	logging.Debug("Form changed",
		zap.Uint64("seq", change.Seq),
		zap.Stringer("cause", change.Cause),
		zap.String("path", change.Path),
	)

	for _, sub := range c.subs {
		// every subscriber gets its own copy of the palette
		msg := change
		msg.Params = change.Params.Clone()
		select {
		case sub.ch <- msg:
		case <-sub.done:
		}
	}
}

func (c *Controller) violation(op, path string, err error) error {
	if c.opts.Strict {
		panic(fmt.Sprintf("form: %s %q: %v", op, path, err))
	}
	logging.Warn("Form contract violation ignored",
		zap.String("op", op),
		zap.String("path", path),
		zap.Error(err),
	)
	return err
}

func checkLoadable(p painter.Params) error {
	if p.Painter == "" {
		return fmt.Errorf("%w: %s is empty", ErrMalformedParams, FieldPainter)
	}
	for name, v := range map[string]float64{
		FieldGlobalBrightness: p.GlobalBrightness,
		FieldSpeed:            p.Speed,
		FieldFade:             p.Fade,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrMalformedParams, name)
		}
	}
	return nil
}
