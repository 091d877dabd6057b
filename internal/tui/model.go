// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quickbrown/typist/internal/layout"
	"github.com/quickbrown/typist/internal/model"
	"github.com/quickbrown/typist/internal/session"
	"github.com/quickbrown/typist/internal/store"
	"github.com/quickbrown/typist/internal/texts"
)

type screen int

const (
	screenPicker screen = iota
	screenLoading
	screenResumePrompt
	screenTyping
	screenSummary
)

const (
	refreshInterval   = 100 * time.Millisecond
	loadSampleEvery   = 16 * time.Millisecond
	statusMessageTime = 2 * time.Second
)

type tickMsg time.Time

type loadProgressMsg struct {
	frac  float64
	stage string
}

type loadDoneMsg struct {
	lay layout.Layout
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	cfg model.Config
	st  *store.Store

	width  int
	height int

	screen screen

	picker list.Model

	sourcePath string
	text       string

	bar       progress.Model
	loadFrac  float64
	loadStage string
	loadCh    chan tea.Msg

	lay      layout.Layout
	textHash string
	found    *model.Save

	sess     *session.Session
	blinkOn  bool
	status   string
	statusAt time.Time

	final     session.Stats
	abandoned bool
}

// NewModel constructs the typing TUI model. A non-empty initial text skips
// the picker screen; sourcePath may be empty for pasted text.
func NewModel(cfg model.Config, st *store.Store, initialText, sourcePath string) *Model {
	m := &Model{
		cfg:        cfg,
		st:         st,
		text:       initialText,
		sourcePath: sourcePath,
		bar:        progress.New(progress.WithDefaultGradient()),
	}
	m.picker = newPicker(cfg.TextsDir)
	if m.text != "" {
		m.screen = screenLoading
	} else {
		m.screen = screenPicker
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenLoading {
		return m.beginLoad()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.SetSize(msg.Width, msg.Height)
		m.bar.Width = barWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenPicker:
			return m.updatePicker(msg)
		case screenResumePrompt:
			return m.updateResumePrompt(msg)
		case screenTyping:
			return m.updateTyping(msg)
		case screenSummary:
			return m.updateSummary(msg)
		default:
			return m, nil
		}
	case loadProgressMsg:
		m.loadFrac = msg.frac
		m.loadStage = msg.stage
		return m, m.awaitLoad()
	case loadDoneMsg:
		return m.finishLoad(msg.lay)
	case tickMsg:
		if m.screen != screenTyping {
			return m, nil
		}
		m.blinkOn = m.cfg.Blink && time.Time(msg).UnixMilli()/500%2 == 0
		if m.status != "" && time.Since(m.statusAt) > statusMessageTime {
			m.status = ""
		}
		return m, tick()
	default:
		if m.screen == screenPicker {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter && m.picker.FilterState() != list.Filtering {
		item, ok := m.picker.SelectedItem().(pickerItem)
		if !ok {
			return m, nil
		}
		switch item.kind {
		case itemQuit:
			return m, tea.Quit
		case itemSample:
			m.text = texts.Sample()
			m.sourcePath = ""
		case itemText:
			text, err := texts.LoadFile(item.entry.Path)
			if err != nil {
				logErrf("failed to load text: %v\n", err)
				return m, tea.Quit
			}
			m.text = text
			m.sourcePath = item.entry.Path
		}
		m.screen = screenLoading
		m.loadFrac = 0
		return m, m.beginLoad()
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// beginLoad builds the layout. With loading disabled it runs inline;
// otherwise it runs in the background and streams progress messages.
func (m *Model) beginLoad() tea.Cmd {
	if m.cfg.NoLoading {
		_, cmd := m.finishLoad(layout.Build(m.text, m.cfg.Width, nil))
		return cmd
	}
	ch := make(chan tea.Msg, 16)
	m.loadCh = ch
	text, width := m.text, m.cfg.Width
	go func() {
		var last time.Time
		lay := layout.Build(text, width, func(frac float64, stage string) {
			now := time.Now()
			if frac < 1 && now.Sub(last) < loadSampleEvery {
				return
			}
			last = now
			select {
			case ch <- loadProgressMsg{frac: frac, stage: stage}:
			default:
			}
		})
		ch <- loadDoneMsg{lay: lay}
	}()
	return m.awaitLoad()
}

func (m *Model) awaitLoad() tea.Cmd {
	ch := m.loadCh
	return func() tea.Msg {
		return <-ch
	}
}

// finishLoad decides between a fresh and a resumed session. A save loaded
// from the --save file resumes without asking; a save found in the store
// asks first.
func (m *Model) finishLoad(lay layout.Layout) (tea.Model, tea.Cmd) {
	m.lay = lay
	m.textHash = store.HashText(lay.Target)
	m.found = nil

	if m.cfg.SavePath != "" {
		if save, err := store.ReadSaveFile(m.cfg.SavePath); err == nil {
			return m.startSession(&save)
		} else if !errors.Is(err, os.ErrNotExist) {
			logErrf("failed to load save file: %v\n", err)
		}
	}
	if save, err := m.st.Get(context.Background(), m.textHash); err == nil {
		m.found = &save
		m.screen = screenResumePrompt
		return m, nil
	} else if !errors.Is(err, store.ErrNoSave) {
		logErrf("failed to query saves: %v\n", err)
	}
	return m.startSession(nil)
}

func (m *Model) updateResumePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		return m.startSession(m.found)
	case "n", "N", "esc":
		return m.startSession(nil)
	default:
		return m, nil
	}
}

func (m *Model) startSession(save *model.Save) (tea.Model, tea.Cmd) {
	var (
		sess *session.Session
		err  error
	)
	if save != nil {
		sess, err = session.Resume(m.lay.Target, *save)
		if errors.Is(err, session.ErrSaveMismatch) {
			logErrf("save does not match this text; starting fresh\n")
			sess, err = session.New(m.lay.Target)
		}
	} else {
		sess, err = session.New(m.lay.Target)
	}
	if err != nil {
		logErrf("failed to start session: %v\n", err)
		return m, tea.Quit
	}
	m.sess = sess
	m.found = nil
	m.status = ""
	m.screen = screenTyping
	return m, tick()
}

func (m *Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.abandoned = true
		return m.toSummary()
	case tea.KeyCtrlS:
		m.saveProgress()
		return m, nil
	case tea.KeyCtrlW:
		m.sess.SubmitWordBackspace()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		m.sess.SubmitBackspace()
		return m, nil
	case tea.KeyEnter:
		return m.submit('\n')
	case tea.KeySpace:
		return m.submit(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if mm, cmd := m.submit(r); m.screen != screenTyping {
				return mm, cmd
			}
		}
		return m, nil
	case tea.KeyTab:
		return m.submit('\t')
	default:
		return m, nil
	}
}

func (m *Model) submit(r rune) (tea.Model, tea.Cmd) {
	if m.sess.State() == session.StateFinished {
		return m, nil
	}
	res, err := m.sess.SubmitCharacter(r)
	if err != nil {
		logErrf("keystroke rejected: %v\n", err)
		return m, nil
	}
	if res.State == session.StateFinished {
		if err := m.st.Delete(context.Background(), m.textHash); err != nil {
			logErrf("failed to clear save: %v\n", err)
		}
		return m.toSummary()
	}
	return m, nil
}

func (m *Model) saveProgress() {
	save := m.sess.Snapshot()
	save.SourcePath = m.sourcePath
	if err := m.st.Put(context.Background(), m.textHash, save); err != nil {
		m.setStatus(fmt.Sprintf("Save failed: %v", err))
		return
	}
	where := "progress saved"
	if m.cfg.SavePath != "" {
		if err := store.WriteSaveFile(m.cfg.SavePath, save); err != nil {
			m.setStatus(fmt.Sprintf("Save failed: %v", err))
			return
		}
		where = fmt.Sprintf("saved to %s", m.cfg.SavePath)
	}
	m.setStatus(where)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusAt = time.Now()
}

func (m *Model) toSummary() (tea.Model, tea.Cmd) {
	m.final = m.sess.Stats()
	m.screen = screenSummary
	return m, nil
}

func (m *Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.abandoned = false
		if m.cfg.FilePath != "" || m.sourcePath == "" {
			// Single-file or pasted runs restart the same text.
			m.screen = screenLoading
			m.loadFrac = 0
			return m, m.beginLoad()
		}
		m.picker = newPicker(m.cfg.TextsDir)
		m.picker.SetSize(m.width, m.height)
		m.screen = screenPicker
		return m, nil
	case "q", "esc":
		return m, tea.Quit
	default:
		return m, nil
	}
}

func barWidth(total int) int {
	w := total - 8
	if w < 10 {
		w = 10
	}
	if w > 60 {
		w = 60
	}
	return w
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
