// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings after merging flags and the config file.
type Config struct {
	TextsDir  string
	Width     int // 0 means detect from the terminal
	NoLoading bool
	Blink     bool
	FilePath  string // target text file, "-" for stdin
	SavePath  string // optional portable JSON save file
}

// Save is the resume state of an in-flight session. It carries the raw
// typed runes so a resumed session is exact.
type Save struct {
	SourcePath string    `json:"source_path,omitempty"`
	Position   int       `json:"position"`
	Typed      string    `json:"typed"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	Score      float64   `json:"score"`
	Streak     int       `json:"streak"`
	Multiplier float64   `json:"multiplier"`
	SavedAt    time.Time `json:"saved_at"`
}
