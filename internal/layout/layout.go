// Package layout wraps target text to a display width and maps rune
// indexes to screen positions.
package layout

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const (
	defaultWidth = 80
	minWidth     = 10
)

// ProgressFunc receives build progress for the loading screen. frac is in
// [0, 1]; stage is a short human-readable label.
type ProgressFunc func(frac float64, stage string)

// Layout is the wrapped form of a target text. The typing target is the
// wrapped lines joined by newlines: at a soft break the breaking space is
// replaced by a newline, so the user presses enter there.
type Layout struct {
	Lines  []string
	Target string
	Width  int

	lineStarts []int // target rune index of each line's first rune
}

// Build wraps text at the given display-cell width. A nil progress function
// is fine. Non-positive widths fall back to the default; widths below the
// minimum are raised to it.
func Build(text string, width int, progress ProgressFunc) Layout {
	if width <= 0 {
		width = defaultWidth
	}
	if width < minWidth {
		width = minWidth
	}

	paragraphs := strings.Split(text, "\n")
	lines := make([]string, 0, len(paragraphs))
	for i, p := range paragraphs {
		if p == "" {
			lines = append(lines, "")
		} else {
			lines = append(lines, wrapParagraph([]rune(p), width)...)
		}
		if progress != nil {
			progress(float64(i+1)/float64(len(paragraphs))*0.5, "Wrapping text")
		}
	}

	starts := make([]int, len(lines))
	var b strings.Builder
	idx := 0
	for i, line := range lines {
		starts[i] = idx
		b.WriteString(line)
		idx += utf8.RuneCountInString(line)
		if i != len(lines)-1 {
			b.WriteByte('\n')
			idx++
		}
		if progress != nil {
			progress(0.5+float64(i+1)/float64(len(lines))*0.5, "Building char map")
		}
	}
	if progress != nil {
		progress(1, "Done")
	}

	return Layout{
		Lines:      lines,
		Target:     b.String(),
		Width:      width,
		lineStarts: starts,
	}
}

// Pos maps a target rune index to its (line, column) position. The column
// is a rune offset within the line; the index one past the end maps to the
// end of the last line.
func (l Layout) Pos(index int) (line, col int) {
	if len(l.lineStarts) == 0 {
		return 0, 0
	}
	line = sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > index
	}) - 1
	if line < 0 {
		line = 0
	}
	return line, index - l.lineStarts[line]
}

// LineStart returns the target rune index of the first rune on a line.
func (l Layout) LineStart(line int) int {
	return l.lineStarts[line]
}

// TotalChars is the length of the typing target in runes.
func (l Layout) TotalChars() int {
	return utf8.RuneCountInString(l.Target)
}

// wrapParagraph greedily wraps one paragraph, breaking at the last space
// when possible and mid-word otherwise. The breaking space is dropped.
func wrapParagraph(runes []rune, width int) []string {
	var lines []string
	line := make([]rune, 0, width)
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(runes); {
		r := runes[i]
		w := runewidth.RuneWidth(r)
		if lineWidth+w > width && len(line) > 0 {
			if lastSpace >= 0 {
				lines = append(lines, string(line[:lastSpace]))
				line = append(line[:0:0], line[lastSpace+1:]...)
			} else {
				lines = append(lines, string(line))
				line = line[:0]
			}
			lineWidth = widthOf(line)
			lastSpace = lastSpaceIndex(line)
			continue
		}
		line = append(line, r)
		lineWidth += w
		if r == ' ' {
			lastSpace = len(line) - 1
		}
		i++
	}
	return append(lines, string(line))
}

func widthOf(line []rune) int {
	total := 0
	for _, r := range line {
		total += runewidth.RuneWidth(r)
	}
	return total
}

func lastSpaceIndex(line []rune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] == ' ' {
			return i
		}
	}
	return -1
}
