// Package session layers draft autosave on top of an evaluation session. The
// engine session itself is synchronous and not safe for concurrent use, so
// every change handed to the save worker carries its own answers snapshot;
// the worker never touches the session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/store"
)

// ErrClosed is returned when a pipeline is used after Close.
var ErrClosed = errors.New("session: pipeline closed")

// DefaultDebounce is how long the save worker waits after the last change
// before persisting a draft.
const DefaultDebounce = 2 * time.Second

// Change is one answer mutation together with the full answer state after it
// was applied. Snapshots keep the worker decoupled from the live session.
type Change struct {
	FieldID  string
	Answers  answers.Map
	Occurred time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce overrides the autosave debounce window.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// WithRecordID resumes an existing record instead of creating a fresh one.
func WithRecordID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.recordID = id
		}
	}
}

// WithCreatedBy stamps saved drafts with an author.
func WithCreatedBy(author string) Option {
	return func(p *Pipeline) {
		p.createdBy = author
	}
}

// WithClock overrides the timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline wraps an engine session and persists draft records as answers
// change. Drafts save without validation; an invalid half-finished inspection
// is still worth keeping.
type Pipeline struct {
	session *engine.Session
	records store.RecordStore

	recordID  string
	createdBy string
	debounce  time.Duration
	now       func() time.Time

	changes chan Change
	done    chan struct{}
	wg      sync.WaitGroup

	mu        sync.Mutex
	saveErr   error
	closed    bool
	completed bool
	created   time.Time
}

// New starts a pipeline around the given session. Callers must Close it to
// flush the final draft.
func New(sess *engine.Session, records store.RecordStore, options ...Option) (*Pipeline, error) {
	if sess == nil {
		return nil, errors.New("session: engine session is required")
	}
	if records == nil {
		return nil, errors.New("session: record store is required")
	}

	p := &Pipeline{
		session:  sess,
		records:  records,
		recordID: uuid.NewString(),
		debounce: DefaultDebounce,
		now:      time.Now,
		changes:  make(chan Change, 16),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	p.created = p.now()

	p.wg.Add(1)
	go p.worker()

	return p, nil
}

// RecordID reports the id drafts are saved under.
func (p *Pipeline) RecordID() string {
	return p.recordID
}

// Set applies an answer change and queues an autosave. Editing reopens a
// completed record as a draft.
func (p *Pipeline) Set(fieldID string, value answers.Value) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.completed = false
	p.mu.Unlock()

	p.session.Set(fieldID, value)
	p.emit(fieldID)
	return nil
}

// Unset removes an answer and queues an autosave. Editing reopens a completed
// record as a draft.
func (p *Pipeline) Unset(fieldID string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.completed = false
	p.mu.Unlock()

	p.session.Unset(fieldID)
	p.emit(fieldID)
	return nil
}

// Evaluate delegates to the wrapped session.
func (p *Pipeline) Evaluate() engine.Result {
	return p.session.Evaluate()
}

// Answers returns a snapshot of the current answer state.
func (p *Pipeline) Answers() answers.Map {
	return p.session.Answers()
}

// Err reports the most recent autosave failure, if any. Save errors never
// interrupt data entry; callers poll this when they care.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saveErr
}

// Flush persists the current state immediately, bypassing the debounce.
func (p *Pipeline) Flush(ctx context.Context) error {
	return p.save(ctx, p.session.Answers())
}

// Complete validates the current state and, when clean, persists the record
// with complete status. An invalid state returns the evaluation result's
// errors without saving. Later flushes keep the completed status until the
// next answer edit.
func (p *Pipeline) Complete(ctx context.Context) (engine.Result, error) {
	result := p.session.Evaluate()
	if !result.Complete {
		return result, fmt.Errorf("session: record has %d validation errors", len(result.Errors))
	}
	rec := p.record(p.session.Answers())
	rec.Status = store.RecordStatusComplete
	if err := p.records.SaveRecord(ctx, rec); err != nil {
		return result, fmt.Errorf("session: save complete record: %w", err)
	}
	p.mu.Lock()
	p.completed = true
	p.mu.Unlock()
	return result, nil
}

// Close stops the worker, flushing any pending draft first.
func (p *Pipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()

	if err := p.save(ctx, p.session.Answers()); err != nil {
		return err
	}
	return p.Err()
}

func (p *Pipeline) emit(fieldID string) {
	change := Change{
		FieldID:  fieldID,
		Answers:  p.session.Answers(),
		Occurred: p.now(),
	}
	select {
	case p.changes <- change:
	case <-p.done:
	}
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	var (
		pending *answers.Map
		timer   *time.Timer
		fire    <-chan time.Time
	)

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			fire = nil
		}
	}

	for {
		select {
		case change := <-p.changes:
			snapshot := change.Answers
			pending = &snapshot
			stopTimer()
			timer = time.NewTimer(p.debounce)
			fire = timer.C
		case <-fire:
			timer = nil
			fire = nil
			if pending != nil {
				p.recordSaveErr(p.save(context.Background(), *pending))
				pending = nil
			}
		case <-p.done:
			stopTimer()
			// Close flushes the final state; pending drafts are covered there.
			return
		}
	}
}

func (p *Pipeline) save(ctx context.Context, snapshot answers.Map) error {
	rec := p.record(snapshot)
	if err := p.records.SaveRecord(ctx, rec); err != nil {
		return fmt.Errorf("session: autosave draft: %w", err)
	}
	return nil
}

func (p *Pipeline) record(snapshot answers.Map) store.Record {
	status := store.RecordStatusDraft
	p.mu.Lock()
	if p.completed {
		status = store.RecordStatusComplete
	}
	p.mu.Unlock()

	return store.Record{
		ID:         p.recordID,
		TemplateID: p.session.Template().ID,
		Status:     status,
		Answers:    snapshot,
		CreatedBy:  p.createdBy,
		CreatedAt:  p.created,
		UpdatedAt:  p.now(),
	}
}

func (p *Pipeline) recordSaveErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saveErr = err
}
