// Package contact holds the contact form state machine: field edits,
// required-field validation, and a single in-flight delivery through an
// external email relay.
package contact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Credentials identify the relay account a message is sent through.
type Credentials struct {
	ServiceID  string
	TemplateID string
	AccessKey  string
}

// Relay delivers one contact message. Any non-nil error is treated as a
// failed delivery.
type Relay interface {
	Send(ctx context.Context, creds Credentials, fields Fields) error
}

// Snapshot is a copy of the flow state handed to observers and renderers.
type Snapshot struct {
	Fields Fields `json:"fields"`
	Status Status `json:"status"`
}

// Attempt describes one resolved delivery. It carries no form content.
type Attempt struct {
	ID       uuid.UUID
	Status   Status
	Started  time.Time
	Finished time.Time
	Err      error
}

// Option customizes a Flow at construction time.
type Option func(*Flow)

// WithLogger sets the logger used for delivery outcomes.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger.With().Str("component", "contact_flow").Logger()
	}
}

// WithClock overrides the clock used to stamp attempts.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// WithAttemptHook registers fn to be called after every delivery resolves.
func WithAttemptHook(fn func(Attempt)) Option {
	return func(f *Flow) {
		f.onAttempt = fn
	}
}

// Flow owns one visitor's form fields and submission status.
type Flow struct {
	relay     Relay
	creds     Credentials
	logger    zerolog.Logger
	now       func() time.Time
	onAttempt func(Attempt)

	mu      sync.Mutex
	fields  Fields
	status  Status
	pending []Snapshot

	// emitMu keeps observer calls in transition order.
	emitMu    sync.Mutex
	subMu     sync.Mutex
	nextSubID int
	subs      map[int]func(Snapshot)
}

// New returns an idle flow with an empty form.
func New(relay Relay, creds Credentials, opts ...Option) *Flow {
	f := &Flow{
		relay:  relay,
		creds:  creds,
		logger: zerolog.Nop(),
		now:    time.Now,
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Snapshot returns the current fields and status.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{Fields: f.fields, Status: f.status}
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes the subscription. Observers must not modify the
// flow from inside fn.
func (f *Flow) Subscribe(fn func(Snapshot)) (cancel func()) {
	f.subMu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.subs[id] = fn
	f.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.subMu.Lock()
			delete(f.subs, id)
			f.subMu.Unlock()
		})
	}
}

// UpdateField overwrites one field. Values are not validated until Submit.
func (f *Flow) UpdateField(field Field, value string) {
	f.mutate(func() {
		f.fields.Set(field, value)
	})
}

// Submit validates the form and, if it is complete, delivers it through the
// relay. It returns a *ValidationError without touching the status when a
// required field is empty, ErrSubmissionInFlight when another submission is
// still pending, and a *DeliveryError when the relay fails. On success the
// form is cleared; on failure it is kept so the visitor can retry.
func (f *Flow) Submit(ctx context.Context) error {
	return f.SubmitWith(ctx, nil)
}

// SubmitWith applies updates and submits in one step. A submission that is
// rejected as in flight leaves the form untouched.
func (f *Flow) SubmitWith(ctx context.Context, updates map[Field]string) error {
	f.mu.Lock()
	if f.status == StatusSubmitting {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	changed := false
	for field, value := range updates {
		if f.fields.Get(field) != value {
			f.fields.Set(field, value)
			changed = true
		}
	}
	if missing := f.fields.Missing(); len(missing) > 0 {
		if changed {
			f.emitLocked()
		} else {
			f.mu.Unlock()
		}
		return &ValidationError{Missing: missing}
	}
	f.status = StatusSubmitting
	fields := f.fields
	f.emitLocked()

	attempt := Attempt{ID: uuid.New(), Started: f.now()}
	err := f.send(ctx, fields)
	attempt.Finished = f.now()

	f.mu.Lock()
	if err != nil {
		f.status = StatusError
	} else {
		f.status = StatusSuccess
		f.fields = Fields{}
	}
	attempt.Status = f.status
	f.emitLocked()

	log := f.logger.With().
		Str("attempt_id", attempt.ID.String()).
		Dur("elapsed", attempt.Finished.Sub(attempt.Started)).
		Logger()
	if err != nil {
		attempt.Err = err
		log.Warn().Err(err).Msg("contact message delivery failed")
	} else {
		log.Info().Msg("contact message delivered")
	}
	if f.onAttempt != nil {
		f.onAttempt(attempt)
	}

	if err != nil {
		return &DeliveryError{Cause: err}
	}
	return nil
}

// send calls the relay, turning a panic into a failed delivery so the
// submission always resolves.
func (f *Flow) send(ctx context.Context, fields Fields) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("relay panic: %v", r)
		}
	}()
	return f.relay.Send(ctx, f.creds, fields)
}

func (f *Flow) mutate(change func()) {
	f.mu.Lock()
	change()
	f.emitLocked()
}

// emitLocked must be called with mu held and releases it. Snapshots are
// queued under mu and delivered in FIFO order by whichever caller holds
// emitMu, so observers never run with mu held.
func (f *Flow) emitLocked() {
	f.pending = append(f.pending, Snapshot{Fields: f.fields, Status: f.status})
	f.mu.Unlock()

	f.emitMu.Lock()
	defer f.emitMu.Unlock()
	for {
		f.mu.Lock()
		if len(f.pending) == 0 {
			f.mu.Unlock()
			return
		}
		snap := f.pending[0]
		f.pending = f.pending[1:]
		f.mu.Unlock()

		f.subMu.Lock()
		subs := make([]func(Snapshot), 0, len(f.subs))
		for _, fn := range f.subs {
			subs = append(subs, fn)
		}
		f.subMu.Unlock()

		for _, fn := range subs {
			fn(snap)
		}
	}
}
