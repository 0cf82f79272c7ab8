package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// ConsoleSink prints notifications to a terminal, coloured by level.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink creates a sink writing to w. Colour is disabled
// automatically when w is not a terminal (see color.NoColor).
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Notify implements Sink.
func (s *ConsoleSink) Notify(level Level, message string) {
	var c *color.Color
	switch level {
	case LevelSuccess:
		c = color.New(color.FgGreen, color.Bold)
	case LevelDanger:
		c = color.New(color.FgRed, color.Bold)
	default:
		c = color.New(color.FgCyan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s\n", c.Sprintf("[%s]", level), message)
}
