package engine

import (
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/template"
)

// State tracks where a form session sits between answer writes and
// re-evaluation.
type State string

const (
	// StateClean means no answer has been written yet.
	StateClean State = "clean"
	// StateDirty means at least one answer changed since the last evaluation;
	// the cached result may be stale.
	StateDirty State = "dirty"
	// StateEvaluated means the cached result reflects the current answers.
	StateEvaluated State = "evaluated"
)

// Session binds a template to a mutable answer map for the lifetime of one
// form-filling pass. Writes mark the session dirty; Evaluate recomputes
// visibility and validation and caches the result. There is no terminal
// state; sessions are re-entered on every answer change.
//
// A Session is not safe for concurrent use; callers needing cross-goroutine
// access should wrap it (see pkg/session).
type Session struct {
	tpl     template.Template
	answers answers.Map
	state   State
	result  Result
}

// SessionOption customises session construction.
type SessionOption func(*Session)

// WithAnswers seeds the session with existing answers, for resuming a draft.
func WithAnswers(initial answers.Map) SessionOption {
	return func(s *Session) {
		s.answers = initial.Clone()
	}
}

// NewSession starts a session over the given template.
func NewSession(tpl template.Template, options ...SessionOption) *Session {
	s := &Session{
		tpl:   tpl,
		state: StateClean,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.answers == nil {
		s.answers = make(answers.Map)
	}
	return s
}

// Template returns the template the session evaluates against.
func (s *Session) Template() template.Template {
	return s.tpl
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Set writes one answer and marks the session dirty. A nil value unsets.
func (s *Session) Set(fieldID string, value answers.Value) {
	if value == nil {
		s.Unset(fieldID)
		return
	}
	s.answers[fieldID] = value
	s.state = StateDirty
}

// Unset removes one answer and marks the session dirty.
func (s *Session) Unset(fieldID string) {
	if _, ok := s.answers[fieldID]; !ok {
		return
	}
	delete(s.answers, fieldID)
	s.state = StateDirty
}

// Answers returns a snapshot of the current answer map.
func (s *Session) Answers() answers.Map {
	return s.answers.Clone()
}

// Evaluate recomputes visibility and validation against the current answers
// and caches the result. The engine functions are pure, so calling it while
// already evaluated simply recomputes the same result.
func (s *Session) Evaluate() Result {
	s.result = Evaluate(s.tpl, s.answers)
	s.state = StateEvaluated
	return s.result
}

// Result returns the last evaluation, recomputing first when the session is
// dirty or has never been evaluated.
func (s *Session) Result() Result {
	if s.state != StateEvaluated {
		return s.Evaluate()
	}
	return s.result
}

// PruneHidden removes answers of currently hidden fields and returns the
// removed ids. Hidden answers are never cleared implicitly: a field that
// becomes visible again would otherwise silently resurface its old value, so
// clearing is an explicit caller decision.
func (s *Session) PruneHidden() []string {
	visibility := Visibility(s.tpl, s.answers)

	var removed []string
	for _, field := range s.tpl.Fields {
		if visibility[field.ID] {
			continue
		}
		if _, ok := s.answers[field.ID]; ok {
			delete(s.answers, field.ID)
			removed = append(removed, field.ID)
		}
	}
	if len(removed) > 0 {
		s.state = StateDirty
	}
	return removed
}
