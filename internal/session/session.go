// Package session implements the typing-session state machine and metrics.
package session

import (
	"errors"
	"time"
	"unicode"

	"github.com/quickbrown/typist/internal/model"
)

// State describes the lifecycle of a typing session.
type State int

// Session lifecycle states.
const (
	StateNotStarted State = iota
	StateRunning
	StateFinished
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Sentinel errors reported to the presenter.
var (
	ErrEmptyText       = errors.New("target text is empty")
	ErrSessionFinished = errors.New("session is finished")
	ErrSaveMismatch    = errors.New("save does not match target text")
)

// Word-award scoring constants. A correctly typed word is worth
// basePointFactor points per character times the current multiplier.
const (
	basePointFactor = 10
	multiplierStart = 0.5
	multiplierStep  = 0.1
	multiplierMax   = 5.0
)

const wpmCharsPerWord = 5.0

// StepResult is the snapshot returned after every submitted event.
// Matched is meaningful only for forward keystrokes.
type StepResult struct {
	Matched  bool
	Cursor   int
	NextChar rune // 0 once the end of the target is reached
	State    State
}

// Stats is the derived view used for the live stats bar and the summary.
type Stats struct {
	ElapsedSeconds float64
	Accuracy       float64 // first-attempt accuracy over [0, cursor)
	WPM            float64
	NextChar       rune // 0 once the end of the target is reached
	State          State
	Typed          int
	Correct        int
	Incorrect      int
	Progress       float64
	Score          float64
	Streak         int
	Multiplier     float64
}

// Session tracks keystrokes against a fixed target text. It performs no I/O
// and is driven one event at a time by the presenter.
type Session struct {
	target []rune
	typed  []rune
	errs   map[int]struct{} // indices mistyped at least once

	state     State
	startedAt time.Time
	endedAt   time.Time

	score      float64
	streak     int
	multiplier float64

	now func() time.Time
}

// New creates a session over a non-empty target text.
func New(text string) (*Session, error) {
	return newSession(text, time.Now)
}

// Resume reconstructs a running session from saved progress. The saved
// elapsed time is already on the clock, so idle time before the next
// keystroke counts toward the total.
func Resume(text string, save model.Save) (*Session, error) {
	return resumeSession(text, save, time.Now)
}

func newSession(text string, now func() time.Time) (*Session, error) {
	target := []rune(text)
	if len(target) == 0 {
		return nil, ErrEmptyText
	}
	return &Session{
		target:     target,
		errs:       map[int]struct{}{},
		state:      StateNotStarted,
		multiplier: multiplierStart,
		now:        now,
	}, nil
}

func resumeSession(text string, save model.Save, now func() time.Time) (*Session, error) {
	s, err := newSession(text, now)
	if err != nil {
		return nil, err
	}
	typed := []rune(save.Typed)
	if save.Position != len(typed) || save.Position >= len(s.target) {
		return nil, ErrSaveMismatch
	}
	s.typed = typed
	s.rebuildErrors()
	s.state = StateRunning
	s.startedAt = s.now().Add(-time.Duration(save.ElapsedMs) * time.Millisecond)
	s.score = save.Score
	s.streak = save.Streak
	s.multiplier = clampMultiplier(save.Multiplier)
	return s, nil
}

// rebuildErrors marks mismatches in the restored buffer. Errors behind
// corrected-and-retyped positions are lost across a save, which matches the
// portable save format carrying only the typed runes.
func (s *Session) rebuildErrors() {
	for i, r := range s.typed {
		if i < len(s.target) && r != s.target[i] {
			s.errs[i] = struct{}{}
		}
	}
}

func clampMultiplier(m float64) float64 {
	if m < multiplierStart {
		return multiplierStart
	}
	if m > multiplierMax {
		return multiplierMax
	}
	return m
}

// SubmitCharacter consumes one forward keystroke. The first keystroke starts
// the timer. The cursor advances whether or not the keystroke matched; a
// mismatch records the position in the error log permanently. Reaching the
// end of the target finishes the session.
func (s *Session) SubmitCharacter(ch rune) (StepResult, error) {
	if s.state == StateFinished {
		return StepResult{}, ErrSessionFinished
	}
	if s.state == StateNotStarted {
		s.state = StateRunning
		s.startedAt = s.now()
	}
	pos := len(s.typed)
	expected := s.target[pos]
	matched := ch == expected
	s.typed = append(s.typed, ch)
	if !matched {
		s.errs[pos] = struct{}{}
		s.streak = 0
		s.multiplier = multiplierStart
	}
	if unicode.IsSpace(expected) {
		s.awardWord(pos)
	}
	if len(s.typed) == len(s.target) {
		s.state = StateFinished
		s.endedAt = s.now()
	}
	return s.step(matched), nil
}

// SubmitBackspace removes the last typed rune. A backspace at position zero
// or outside a running session is a defined no-op, not an error. The error
// log is never mutated.
func (s *Session) SubmitBackspace() StepResult {
	if s.state != StateRunning || len(s.typed) == 0 {
		return s.step(false)
	}
	s.typed = s.typed[:len(s.typed)-1]
	return s.step(false)
}

// SubmitWordBackspace removes the trailing word per the smart-delete rule.
// Same no-op conditions as SubmitBackspace.
func (s *Session) SubmitWordBackspace() StepResult {
	if s.state != StateRunning || len(s.typed) == 0 {
		return s.step(false)
	}
	removed := wordDeleteCount(s.typed)
	s.typed = s.typed[:len(s.typed)-removed]
	return s.step(false)
}

// awardWord checks the word ending just before the separator at sep and, if
// it was typed entirely correctly, awards points and extends the streak.
func (s *Session) awardWord(sep int) {
	start := sep
	for start > 0 && !unicode.IsSpace(s.target[start-1]) {
		start--
	}
	if start == sep {
		return
	}
	for k := start; k < sep; k++ {
		if s.typed[k] != s.target[k] {
			return
		}
	}
	s.score += float64(basePointFactor*(sep-start)) * s.multiplier
	s.streak++
	s.multiplier = clampMultiplier(s.multiplier + multiplierStep)
}

// Stats computes the derived view at the current instant.
func (s *Session) Stats() Stats {
	cursor := len(s.typed)
	elapsed := s.elapsed()

	accuracy := 1.0
	correct := 0
	incorrect := 0
	if cursor > 0 {
		incorrect = s.errorsBelow(cursor)
		correct = cursor - incorrect
		accuracy = float64(correct) / float64(cursor)
	}

	wpm := 0.0
	if seconds := elapsed.Seconds(); seconds > 0 {
		wpm = (float64(cursor) / wpmCharsPerWord) / (seconds / 60.0)
	}

	progress := float64(cursor) / float64(len(s.target))

	return Stats{
		ElapsedSeconds: elapsed.Seconds(),
		Accuracy:       accuracy,
		WPM:            wpm,
		NextChar:       s.nextChar(),
		State:          s.state,
		Typed:          cursor,
		Correct:        correct,
		Incorrect:      incorrect,
		Progress:       progress,
		Score:          s.score,
		Streak:         s.streak,
		Multiplier:     s.multiplier,
	}
}

// Snapshot returns the serializable resume state.
func (s *Session) Snapshot() model.Save {
	return model.Save{
		Position:   len(s.typed),
		Typed:      string(s.typed),
		ElapsedMs:  s.elapsed().Milliseconds(),
		Score:      s.score,
		Streak:     s.streak,
		Multiplier: s.multiplier,
		SavedAt:    s.now(),
	}
}

// State reports the session lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Cursor is the index of the next character the user must type.
func (s *Session) Cursor() int {
	return len(s.typed)
}

// Len is the length of the target text in runes.
func (s *Session) Len() int {
	return len(s.target)
}

// Target exposes the target runes for rendering. Callers must not modify
// the returned slice.
func (s *Session) Target() []rune {
	return s.target
}

// Typed exposes the typed runes for rendering. Callers must not modify the
// returned slice.
func (s *Session) Typed() []rune {
	return s.typed
}

func (s *Session) step(matched bool) StepResult {
	return StepResult{
		Matched:  matched,
		Cursor:   len(s.typed),
		NextChar: s.nextChar(),
		State:    s.state,
	}
}

func (s *Session) nextChar() rune {
	if len(s.typed) < len(s.target) {
		return s.target[len(s.typed)]
	}
	return 0
}

func (s *Session) elapsed() time.Duration {
	switch s.state {
	case StateRunning:
		return s.now().Sub(s.startedAt)
	case StateFinished:
		return s.endedAt.Sub(s.startedAt)
	default:
		return 0
	}
}

func (s *Session) errorsBelow(cursor int) int {
	count := 0
	for idx := range s.errs {
		if idx < cursor {
			count++
		}
	}
	return count
}
