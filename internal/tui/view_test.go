package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quickbrown/typist/internal/layout"
	"github.com/quickbrown/typist/internal/model"
	"github.com/quickbrown/typist/internal/session"
	"github.com/quickbrown/typist/internal/store"
)

func newTestModel(t *testing.T, text, typed string) *Model {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "typist.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	m := NewModel(model.Config{TextsDir: t.TempDir(), Width: 80}, st, text, "")
	m.lay = layout.Build(text, 80, nil)
	m.textHash = store.HashText(m.lay.Target)
	sess, err := session.New(m.lay.Target)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	for _, r := range typed {
		if _, err := sess.SubmitCharacter(r); err != nil {
			t.Fatalf("submit %q: %v", r, err)
		}
	}
	m.sess = sess
	m.screen = screenTyping
	return m
}

func TestRenderCellStyles(t *testing.T) {
	m := newTestModel(t, "a b", "")
	typed := []rune("ax")

	if got := m.renderCell('a', 0, typed, 2); got != correctStyle.Render("a") {
		t.Fatalf("expected correct style, got %q", got)
	}
	// The target rune is displayed on a mistype, not the typed one.
	if got := m.renderCell('b', 1, typed, 2); got != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style with target rune, got %q", got)
	}
	if got := m.renderCell(' ', 1, typed, 2); got != incorrectStyle.Render("•") {
		t.Fatalf("expected red dot for wrong space, got %q", got)
	}
	if got := m.renderCell('b', 2, typed, 2); got != cursorHotStyle.Render("b") {
		t.Fatalf("expected cursor style, got %q", got)
	}
	if got := m.renderCell('b', 3, typed, 2); got != pendingStyle.Render("b") {
		t.Fatalf("expected pending style, got %q", got)
	}
}

func TestRenderNewlineCell(t *testing.T) {
	m := newTestModel(t, "a\nb", "")
	typed := []rune("ax")

	if got := m.renderNewlineCell(1, typed, 1); got != cursorHotStyle.Render("¶") {
		t.Fatalf("expected cursor pilcrow, got %q", got)
	}
	if got := m.renderNewlineCell(1, typed, 2); got != incorrectStyle.Render("¶") {
		t.Fatalf("expected red pilcrow for mistyped newline, got %q", got)
	}
	if got := m.renderNewlineCell(3, typed, 2); got != " " {
		t.Fatalf("expected blank pending newline cell, got %q", got)
	}
}

func TestRenderTopBarSegments(t *testing.T) {
	m := newTestModel(t, "hello world", "hello ")
	out := m.renderTopBar(m.sess.Stats())
	for _, needle := range []string{"Time:", "Accuracy:", "WPM:", "Streak:", "Score:", "["} {
		if !strings.Contains(out, needle) {
			t.Fatalf("top bar missing %q: %s", needle, out)
		}
	}
}

func TestAsciiProgressBar(t *testing.T) {
	if got := asciiProgressBar(0, 8); got != "[>.......]" {
		t.Fatalf("unexpected empty bar: %q", got)
	}
	if got := asciiProgressBar(0.5, 8); got != "[====>...]" {
		t.Fatalf("unexpected half bar: %q", got)
	}
	if got := asciiProgressBar(1, 8); got != "[========]" {
		t.Fatalf("unexpected full bar: %q", got)
	}
	if got := asciiProgressBar(2, 8); got != "[========]" {
		t.Fatalf("overflow must clamp: %q", got)
	}
}

func TestCursorStyleBlink(t *testing.T) {
	m := newTestModel(t, "ab", "")

	// Blink off: always the hot style regardless of the blink phase.
	m.cfg.Blink = false
	m.blinkOn = false
	if got := m.cursorStyle().Render("a"); got != cursorHotStyle.Render("a") {
		t.Fatalf("expected hot cursor with blink off, got %q", got)
	}

	m.cfg.Blink = true
	if got := m.cursorStyle().Render("a"); got != cursorDimStyle.Render("a") {
		t.Fatalf("expected dim cursor in the off phase, got %q", got)
	}
	m.blinkOn = true
	if got := m.cursorStyle().Render("a"); got != cursorHotStyle.Render("a") {
		t.Fatalf("expected hot cursor in the on phase, got %q", got)
	}
}

func TestTruncateCells(t *testing.T) {
	if got := truncateCells("abcdef", 4); got != "abcd" {
		t.Fatalf("unexpected narrow truncation: %q", got)
	}
	// Double-width runes count as two cells.
	if got := truncateCells("你好世界", 4); got != "你好" {
		t.Fatalf("unexpected wide-rune truncation: %q", got)
	}
	if got := truncateCells("abc", 8); got != "abc" {
		t.Fatalf("short input must pass through: %q", got)
	}
	if got := truncateCells("abc", 0); got != "abc" {
		t.Fatalf("zero width must pass through: %q", got)
	}
}

func TestRenderWindowFollowsCursor(t *testing.T) {
	// 26 one-word lines.
	words := make([]string, 26)
	for i := range words {
		words[i] = strings.Repeat(string(rune('a'+i)), 4)
	}
	m := newTestModel(t, strings.Join(words, "\n"), "")

	out := m.renderWindow(5)
	if got := len(strings.Split(out, "\n")); got != 5 {
		t.Fatalf("expected 5 rows, got %d", got)
	}
	if !strings.Contains(out, "aaaa") {
		t.Fatalf("window at start must show the first line: %s", out)
	}

	// Type through the first 13 lines to drag the window down.
	for _, r := range strings.Join(words[:13], "\n") + "\n" {
		if _, err := m.sess.SubmitCharacter(r); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	out = m.renderWindow(5)
	if strings.Contains(out, "aaaa") {
		t.Fatalf("window must have scrolled past the first line: %s", out)
	}
	if !strings.Contains(out, "nnnn") {
		t.Fatalf("window must show the cursor line: %s", out)
	}
}

func TestTypingThroughUpdateFinishes(t *testing.T) {
	m := newTestModel(t, "hi", "")

	if _, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}}); m.screen != screenTyping {
		t.Fatalf("expected to stay on typing screen")
	}
	if _, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}}); m.screen != screenSummary {
		t.Fatalf("expected summary after final keystroke")
	}
	if m.final.State != session.StateFinished {
		t.Fatalf("expected finished state, got %v", m.final.State)
	}
	if m.final.Accuracy != 1.0 {
		t.Fatalf("expected perfect accuracy, got %f", m.final.Accuracy)
	}

	out := m.View()
	if !strings.Contains(out, "Typing session finished!") {
		t.Fatalf("summary view missing title: %s", out)
	}
}

func TestBackspaceAndWordDeleteThroughUpdate(t *testing.T) {
	m := newTestModel(t, "one two", "one tw")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.sess.Cursor(); got != 5 {
		t.Fatalf("expected cursor 5 after backspace, got %d", got)
	}
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlW})
	if got := m.sess.Cursor(); got != 4 {
		t.Fatalf("expected cursor 4 after word delete, got %d", got)
	}
}

func TestEscAbandonsToSummary(t *testing.T) {
	m := newTestModel(t, "hello", "he")
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenSummary {
		t.Fatalf("expected summary after esc")
	}
	if !m.abandoned {
		t.Fatalf("expected abandoned flag")
	}
	if out := m.View(); !strings.Contains(out, "abandoned") {
		t.Fatalf("summary must say abandoned: %s", out)
	}
}
