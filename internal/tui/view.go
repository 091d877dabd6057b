package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/quickbrown/typist/internal/session"
)

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorHotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#C89A3A")).Bold(true)
	cursorDimStyle = pendingStyle.Reverse(true)
	topBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7AA2F7")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle    = lipgloss.NewStyle().Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	switch m.screen {
	case screenPicker:
		return m.picker.View()
	case screenLoading:
		return m.viewLoading()
	case screenResumePrompt:
		return m.viewResumePrompt()
	case screenTyping:
		return m.viewTyping()
	case screenSummary:
		return m.viewSummary()
	default:
		return ""
	}
}

func (m *Model) viewLoading() string {
	content := titleStyle.Render("Preparing text...") + "\n\n" +
		m.bar.ViewAs(m.loadFrac) + "\n" +
		footerStyle.Render(m.loadStage)
	return m.center(content)
}

func (m *Model) viewResumePrompt() string {
	done := 0.0
	if total := m.lay.TotalChars(); total > 0 && m.found != nil {
		done = float64(m.found.Position) / float64(total) * 100
	}
	var saved string
	if m.found != nil {
		saved = m.found.SavedAt.Format("2006-01-02 15:04")
	}
	content := titleStyle.Render("Found saved progress for this text") + "\n\n" +
		fmt.Sprintf("%.0f%% done, saved %s", done, saved) + "\n\n" +
		footerStyle.Render("continue where you left off? y/n")
	return m.center(content)
}

func (m *Model) viewTyping() string {
	stats := m.sess.Stats()
	rows := m.textRows()

	var b strings.Builder
	b.WriteString(m.renderTopBar(stats))
	b.WriteString("\n\n")
	b.WriteString(m.renderWindow(rows))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) textRows() int {
	h := m.height
	if h <= 0 {
		h = 24
	}
	rows := h - 4
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) renderTopBar(st session.Stats) string {
	bar := asciiProgressBar(st.Progress, progressCells(m.width))
	text := fmt.Sprintf(" Time: %6.2fs   Accuracy: %6.2f%%   WPM: %6.2f   Streak: %d  Mult: %.2fx  Score: %d  %s",
		st.ElapsedSeconds, st.Accuracy*100, st.WPM, st.Streak, st.Multiplier, int(st.Score), bar)
	return topBarStyle.Render(truncateCells(text, m.width))
}

func (m *Model) renderFooter() string {
	if m.status != "" {
		return statusStyle.Render(" " + m.status)
	}
	return footerStyle.Render(" esc quit early · ctrl+w delete word · ctrl+s save · ctrl+c exit")
}

// renderWindow renders a band of wrapped lines centered on the cursor line.
func (m *Model) renderWindow(rows int) string {
	total := len(m.lay.Lines)
	curLine, _ := m.lay.Pos(m.sess.Cursor())
	start := curLine - rows/2
	if start > total-rows {
		start = total - rows
	}
	if start < 0 {
		start = 0
	}
	end := start + rows
	if end > total {
		end = total
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderLine(i))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderLine(idx int) string {
	line := []rune(m.lay.Lines[idx])
	startIdx := m.lay.LineStart(idx)
	typed := m.sess.Typed()
	cursor := len(typed)

	var b strings.Builder
	b.WriteString("  ")
	for col, target := range line {
		b.WriteString(m.renderCell(target, startIdx+col, typed, cursor))
	}
	if idx != len(m.lay.Lines)-1 {
		b.WriteString(m.renderNewlineCell(startIdx+len(line), typed, cursor))
	}
	return b.String()
}

// renderCell styles one target cell: the target rune is always displayed,
// a mistyped space shows as a dot.
func (m *Model) renderCell(target rune, idx int, typed []rune, cursor int) string {
	switch {
	case idx < cursor:
		if typed[idx] == target {
			return correctStyle.Render(string(target))
		}
		if target == ' ' {
			return incorrectStyle.Render("•")
		}
		return incorrectStyle.Render(string(target))
	case idx == cursor:
		return m.cursorStyle().Render(string(target))
	default:
		return pendingStyle.Render(string(target))
	}
}

// renderNewlineCell styles the newline position at the end of a wrapped
// line: a pilcrow when the cursor sits on it or it was mistyped.
func (m *Model) renderNewlineCell(idx int, typed []rune, cursor int) string {
	switch {
	case idx == cursor:
		return m.cursorStyle().Render("¶")
	case idx < cursor && typed[idx] != '\n':
		return incorrectStyle.Render("¶")
	default:
		return " "
	}
}

func (m *Model) cursorStyle() lipgloss.Style {
	if !m.cfg.Blink || m.blinkOn {
		return cursorHotStyle
	}
	return cursorDimStyle
}

func (m *Model) viewSummary() string {
	st := m.final
	title := "Typing session finished!"
	if m.abandoned {
		title = "Typing session abandoned"
	}
	lines := []string{
		titleStyle.Render(title),
		"",
		fmt.Sprintf("Time elapsed: %.2f seconds", st.ElapsedSeconds),
		fmt.Sprintf("Characters typed: %d", st.Typed),
		fmt.Sprintf("Correct characters: %d", st.Correct),
		fmt.Sprintf("Incorrect characters: %d", st.Incorrect),
		fmt.Sprintf("Accuracy: %.2f%%", st.Accuracy*100),
		fmt.Sprintf("WPM: %.2f", st.WPM),
		fmt.Sprintf("Score: %d   Streak: %d   Multiplier: %.2fx", int(st.Score), st.Streak, st.Multiplier),
		"",
		footerStyle.Render("enter practice again · q quit"),
	}
	return m.center(strings.Join(lines, "\n"))
}

func (m *Model) center(content string) string {
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// progressCells sizes the top-bar progress gauge to the terminal width.
func progressCells(width int) int {
	cells := width / 10
	if cells < 8 {
		cells = 8
	}
	if cells > 16 {
		cells = 16
	}
	return cells
}

// asciiProgressBar renders a [====>....] gauge with the given inner width.
func asciiProgressBar(frac float64, cells int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(cells))
	if filled >= cells {
		return "[" + strings.Repeat("=", cells) + "]"
	}
	return "[" + strings.Repeat("=", filled) + ">" + strings.Repeat(".", cells-filled-1) + "]"
}

// truncateCells trims a line to a display-cell width, so wide runes are
// counted by the cells they occupy.
func truncateCells(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "")
}
