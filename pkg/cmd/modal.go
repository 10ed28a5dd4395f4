package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TextStyle selects a single-line or multi-line text input.
type TextStyle int

const (
	TextShort TextStyle = iota + 1
	TextParagraph
)

// ModalField is one text input of a modal.
type ModalField struct {
	ID          string
	Label       string
	Placeholder string
	Value       string
	Style       TextStyle
	Required    bool
	MinLength   int
	MaxLength   int
	// Type coerces the submitted text; defaults to String(). Submitted
	// values are always strings, so Type must accept string input.
	Type Coercer
}

// Modal describes a form shown to the user.
type Modal struct {
	// CustomID correlates the submission; generated when empty.
	CustomID string
	Title    string
	Fields   []ModalField
}

// ModalSubmission is the coerced result of a modal.
type ModalSubmission struct {
	Values      Args
	Interaction *Interaction

	fw *Framework
}

// Respond answers the submission interaction.
func (s *ModalSubmission) Respond(ctx context.Context, r Response) error {
	if err := s.fw.responder.Respond(ctx, s.Interaction, r); err != nil {
		return &TransportError{Op: "respond " + r.Kind.String(), Err: err}
	}
	return nil
}

type modalResult struct {
	sub *ModalSubmission
	err error
}

type pendingModal struct {
	fields []ModalField
	// Buffered so resolution never blocks the submitting task.
	ch chan modalResult
}

// modalSessions is the only state shared between concurrent dispatches.
type modalSessions struct {
	mu      sync.Mutex
	pending map[string]*pendingModal
}

func newModalSessions() *modalSessions {
	return &modalSessions{pending: make(map[string]*pendingModal)}
}

func (s *modalSessions) add(id string, fields []ModalField) (*pendingModal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[id]; exists {
		return nil, fmt.Errorf("%w: modal %s already pending", ErrDuplicate, id)
	}
	p := &pendingModal{fields: fields, ch: make(chan modalResult, 1)}
	s.pending[id] = p
	return p, nil
}

// take removes and returns the waiter for id. At most one caller gets it.
func (s *modalSessions) take(id string) (*pendingModal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return p, ok
}

func (s *modalSessions) remove(id string, p *pendingModal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] == p {
		delete(s.pending, id)
	}
}

func (s *modalSessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ModalWaiter is the handle returned by CreateModal.
type ModalWaiter struct {
	ID string

	p       *pendingModal
	fw      *Framework
	timeout time.Duration
	// stop detaches the release tied to the creating interaction's context.
	stop func() bool
}

// Wait blocks until the modal is submitted, ctx is done or the framework's
// modal timeout elapses. On cancellation the waiter is deregistered.
func (w *ModalWaiter) Wait(ctx context.Context) (*ModalSubmission, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	defer w.stop()
	select {
	case res := <-w.p.ch:
		return res.sub, res.err
	case <-ctx.Done():
		w.Cancel()
		// A submission may have won the race before Cancel took the lock.
		select {
		case res := <-w.p.ch:
			return res.sub, res.err
		default:
		}
		return nil, ctx.Err()
	}
}

// Cancel deregisters the waiter. Later submissions for its id are stale.
func (w *ModalWaiter) Cancel() {
	w.fw.modals.remove(w.ID, w.p)
}

// CreateModal shows a modal and registers a waiter for its submission.
// The waiter is released when the interaction's context is done, even if
// Wait is never called.
func (c *Context) CreateModal(m Modal) (*ModalWaiter, error) {
	if m.CustomID == "" {
		m.CustomID = uuid.NewString()
	}
	p, err := c.fw.modals.add(m.CustomID, m.Fields)
	if err != nil {
		return nil, err
	}
	w := &ModalWaiter{ID: m.CustomID, p: p, fw: c.fw, timeout: c.fw.modalTimeout}
	w.stop = context.AfterFunc(c.Context(), w.Cancel)
	if err := c.Respond(Response{Kind: ResponseModal, Modal: &m}); err != nil {
		w.stop()
		w.Cancel()
		return nil, err
	}
	return w, nil
}

func coerceFields(c *Context, fields []ModalField, submitted map[string]string) (Args, error) {
	var values Args
	for _, f := range fields {
		text, ok := submitted[f.ID]
		if !ok || text == "" {
			if f.Required {
				return Args{}, &CoercionError{Argument: f.ID, Kind: CoercionMissingRequired}
			}
			continue
		}
		typ := f.Type
		if typ == nil {
			typ = String()
		}
		raw := RawOption{Name: f.ID, Kind: typ.Schema().Kind, Value: text}
		v, err := typ.Coerce(c, raw)
		if err != nil {
			return Args{}, asCoercionError(f.ID, err)
		}
		values.set(f.ID, v)
	}
	return values, nil
}
