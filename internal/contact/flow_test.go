package contact

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRelay records calls and, when gate is set, blocks each Send until a
// result is pushed on it.
type fakeRelay struct {
	mu    sync.Mutex
	calls []Fields
	creds []Credentials

	started chan struct{}
	gate    chan error
	err     error
}

func (r *fakeRelay) Send(ctx context.Context, creds Credentials, fields Fields) error {
	r.mu.Lock()
	r.calls = append(r.calls, fields)
	r.creds = append(r.creds, creds)
	r.mu.Unlock()

	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.gate != nil {
		return <-r.gate
	}
	return r.err
}

func (r *fakeRelay) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) record(s Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func (r *recorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Status
	for _, s := range r.snaps {
		if len(out) == 0 || out[len(out)-1] != s.Status {
			out = append(out, s.Status)
		}
	}
	return out
}

var testCreds = Credentials{ServiceID: "service_test", TemplateID: "template_test", AccessKey: "key"}

func fill(f *Flow, fields Fields) {
	f.UpdateField(FieldName, fields.Name)
	f.UpdateField(FieldEmail, fields.Email)
	f.UpdateField(FieldSubject, fields.Subject)
	f.UpdateField(FieldMessage, fields.Message)
}

func TestNew_StartsIdleAndEmpty(t *testing.T) {
	f := New(&fakeRelay{}, testCreds)
	assert.Equal(t, Snapshot{Status: StatusIdle}, f.Snapshot())
}

func TestUpdateField_OverwritesWithoutValidation(t *testing.T) {
	f := New(&fakeRelay{}, testCreds)

	f.UpdateField(FieldEmail, "not an email")
	f.UpdateField(FieldEmail, "jane@x.com")
	f.UpdateField(FieldSubject, "   ")

	snap := f.Snapshot()
	assert.Equal(t, "jane@x.com", snap.Fields.Email)
	assert.Equal(t, "   ", snap.Fields.Subject)
	assert.Equal(t, StatusIdle, snap.Status)
}

func TestSubmit_SuccessResetsFields(t *testing.T) {
	relay := &fakeRelay{}
	rec := &recorder{}
	f := New(relay, testCreds)
	fill(f, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"})
	f.Subscribe(rec.record)

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, []Status{StatusSubmitting, StatusSuccess}, rec.statuses())
	assert.Equal(t, Snapshot{Status: StatusSuccess}, f.Snapshot())
	require.Len(t, relay.calls, 1)
	assert.Equal(t, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"}, relay.calls[0])
	assert.Equal(t, testCreds, relay.creds[0])
}

func TestSubmit_MissingNameIsValidationError(t *testing.T) {
	relay := &fakeRelay{}
	rec := &recorder{}
	f := New(relay, testCreds)
	fill(f, Fields{Email: "jane@x.com", Message: "Hi"})
	f.Subscribe(rec.record)

	err := f.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Field{FieldName}, verr.Missing)
	assert.Contains(t, verr.Error(), "name")
	assert.Equal(t, StatusIdle, f.Snapshot().Status)
	assert.Zero(t, relay.callCount())
	assert.Empty(t, rec.statuses())
}

func TestSubmit_ValidationReportsEveryMissingField(t *testing.T) {
	cases := []struct {
		name    string
		fields  Fields
		missing []Field
	}{
		{"all empty", Fields{}, []Field{FieldName, FieldEmail, FieldMessage}},
		{"whitespace only", Fields{Name: " ", Email: "\t", Message: "\n"}, []Field{FieldName, FieldEmail, FieldMessage}},
		{"missing email", Fields{Name: "Jane", Message: "Hi"}, []Field{FieldEmail}},
		{"missing message", Fields{Name: "Jane", Email: "jane@x.com", Subject: "Hello"}, []Field{FieldMessage}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			relay := &fakeRelay{}
			f := New(relay, testCreds)
			fill(f, tc.fields)

			var verr *ValidationError
			require.ErrorAs(t, f.Submit(context.Background()), &verr)
			assert.Equal(t, tc.missing, verr.Missing)
			assert.Equal(t, tc.fields, f.Snapshot().Fields)
			assert.Zero(t, relay.callCount())
		})
	}
}

func TestSubmit_ValidationKeepsTerminalStatus(t *testing.T) {
	relay := &fakeRelay{err: errors.New("boom")}
	f := New(relay, testCreds)
	fill(f, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"})
	require.Error(t, f.Submit(context.Background()))
	require.Equal(t, StatusError, f.Snapshot().Status)

	f.UpdateField(FieldMessage, "")
	var verr *ValidationError
	require.ErrorAs(t, f.Submit(context.Background()), &verr)
	assert.Equal(t, StatusError, f.Snapshot().Status)
	assert.Equal(t, 1, relay.callCount())
}

func TestSubmit_DeliveryFailureKeepsFields(t *testing.T) {
	netErr := errors.New("network unreachable")
	relay := &fakeRelay{err: netErr}
	rec := &recorder{}
	f := New(relay, testCreds)
	fields := Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"}
	fill(f, fields)
	f.Subscribe(rec.record)

	err := f.Submit(context.Background())

	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.ErrorIs(t, err, netErr)
	assert.Equal(t, []Status{StatusSubmitting, StatusError}, rec.statuses())
	assert.Equal(t, Snapshot{Fields: fields, Status: StatusError}, f.Snapshot())
}

func TestSubmit_RetryAfterErrorReentersSubmitting(t *testing.T) {
	relay := &fakeRelay{err: errors.New("rate limited")}
	rec := &recorder{}
	f := New(relay, testCreds)
	fill(f, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"})
	require.Error(t, f.Submit(context.Background()))

	relay.err = nil
	f.Subscribe(rec.record)
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, []Status{StatusSubmitting, StatusSuccess}, rec.statuses())
	assert.Equal(t, 2, relay.callCount())
	assert.Equal(t, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"}, relay.calls[1])
}

func TestSubmit_SubmittingBeforeRelayResolves(t *testing.T) {
	relay := &fakeRelay{started: make(chan struct{}, 1), gate: make(chan error)}
	f := New(relay, testCreds)
	fill(f, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"})

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()

	<-relay.started
	assert.Equal(t, StatusSubmitting, f.Snapshot().Status)

	relay.gate <- nil
	require.NoError(t, <-done)
	assert.Equal(t, StatusSuccess, f.Snapshot().Status)
}

func TestSubmit_ReentrantCallIsRejected(t *testing.T) {
	relay := &fakeRelay{started: make(chan struct{}, 1), gate: make(chan error)}
	f := New(relay, testCreds)
	fill(f, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"})

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-relay.started

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, 1, relay.callCount())
	assert.Equal(t, StatusSubmitting, f.Snapshot().Status)

	relay.gate <- errors.New("auth")
	var derr *DeliveryError
	require.ErrorAs(t, <-done, &derr)
	assert.Equal(t, 1, relay.callCount())
}

func TestSubmit_ReportsAttempt(t *testing.T) {
	start := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := start
	clock := func() time.Time {
		now := tick
		tick = tick.Add(250 * time.Millisecond)
		return now
	}

	var attempts []Attempt
	relayErr := errors.New("quota exceeded")
	relay := &fakeRelay{err: relayErr}
	f := New(relay, testCreds, WithClock(clock), WithAttemptHook(func(a Attempt) {
		attempts = append(attempts, a)
	}))
	fill(f, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"})
	require.Error(t, f.Submit(context.Background()))

	relay.err = nil
	require.NoError(t, f.Submit(context.Background()))

	require.Len(t, attempts, 2)
	assert.Equal(t, StatusError, attempts[0].Status)
	assert.ErrorIs(t, attempts[0].Err, relayErr)
	assert.Equal(t, start, attempts[0].Started)
	assert.Equal(t, start.Add(250*time.Millisecond), attempts[0].Finished)
	assert.Equal(t, StatusSuccess, attempts[1].Status)
	assert.NoError(t, attempts[1].Err)
	assert.NotEqual(t, attempts[0].ID, attempts[1].ID)
}

func TestSubscribe_CancelStopsNotifications(t *testing.T) {
	f := New(&fakeRelay{}, testCreds)
	rec := &recorder{}
	cancel := f.Subscribe(rec.record)

	f.UpdateField(FieldName, "J")
	cancel()
	cancel()
	f.UpdateField(FieldName, "Ja")

	require.Len(t, rec.snaps, 1)
	assert.Equal(t, "J", rec.snaps[0].Fields.Name)
}

func TestParseField(t *testing.T) {
	for _, name := range []string{"name", "email", "subject", "message"} {
		f, err := ParseField(name)
		require.NoError(t, err)
		assert.Equal(t, Field(name), f)
	}

	_, err := ParseField("phone")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestStatus_JSON(t *testing.T) {
	b, err := StatusSubmitting.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"submitting"`, string(b))

	var s Status
	require.NoError(t, s.UnmarshalJSON([]byte(`"error"`)))
	assert.Equal(t, StatusError, s)
	assert.Error(t, s.UnmarshalJSON([]byte(`"done"`)))
}

func TestSubscribe_ObserverMayReadSnapshot(t *testing.T) {
	f := New(&fakeRelay{}, testCreds)
	var mu sync.Mutex
	var seen []string
	f.Subscribe(func(Snapshot) {
		snap := f.Snapshot()
		mu.Lock()
		seen = append(seen, snap.Fields.Name)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.UpdateField(FieldName, "Jane")
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 8)
}

type panicRelay struct{}

func (panicRelay) Send(context.Context, Credentials, Fields) error {
	panic("smtp client exploded")
}

func TestSubmit_RelayPanicEndsSubmission(t *testing.T) {
	rec := &recorder{}
	var attempts []Attempt
	f := New(panicRelay{}, testCreds, WithAttemptHook(func(a Attempt) {
		attempts = append(attempts, a)
	}))
	fields := Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"}
	fill(f, fields)
	f.Subscribe(rec.record)

	var err error
	require.NotPanics(t, func() { err = f.Submit(context.Background()) })

	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, err.Error(), "smtp client exploded")
	assert.Equal(t, []Status{StatusSubmitting, StatusError}, rec.statuses())
	assert.Equal(t, Snapshot{Fields: fields, Status: StatusError}, f.Snapshot())
	require.Len(t, attempts, 1)
	assert.Equal(t, StatusError, attempts[0].Status)

	// The flow accepts the next submission instead of reporting it in flight.
	f.relay = &fakeRelay{}
	assert.NoError(t, f.Submit(context.Background()))
}

func TestSubmitWith_AppliesUpdatesBeforeValidating(t *testing.T) {
	relay := &fakeRelay{}
	f := New(relay, testCreds)
	f.UpdateField(FieldName, "Jane")

	err := f.SubmitWith(context.Background(), map[Field]string{FieldEmail: "jane@x.com"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Field{FieldMessage}, verr.Missing)
	assert.Equal(t, Fields{Name: "Jane", Email: "jane@x.com"}, f.Snapshot().Fields)

	require.NoError(t, f.SubmitWith(context.Background(), map[Field]string{FieldMessage: "Hi"}))
	require.Len(t, relay.calls, 1)
	assert.Equal(t, Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"}, relay.calls[0])
}

func TestSubmitWith_InFlightLeavesFieldsUntouched(t *testing.T) {
	relay := &fakeRelay{started: make(chan struct{}, 1), gate: make(chan error)}
	rec := &recorder{}
	f := New(relay, testCreds)
	submitted := Fields{Name: "Jane", Email: "jane@x.com", Message: "Hi"}
	fill(f, submitted)

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-relay.started
	f.Subscribe(rec.record)

	err := f.SubmitWith(context.Background(), map[Field]string{FieldName: "Mallory", FieldMessage: "other"})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, Snapshot{Fields: submitted, Status: StatusSubmitting}, f.Snapshot())
	assert.Empty(t, rec.statuses())

	relay.gate <- errors.New("auth")
	var derr *DeliveryError
	require.ErrorAs(t, <-done, &derr)
	assert.Equal(t, Snapshot{Fields: submitted, Status: StatusError}, f.Snapshot())
	assert.Equal(t, 1, relay.callCount())
}
