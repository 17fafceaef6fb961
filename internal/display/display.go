// Package display is the output sink boundary. The panel itself is external;
// the unit only hands it frames.
package display

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"faculty-desk-unit/internal/render"
)

// Sink applies rendered frames to the physical output surface. A failing Init
// is fatal at startup: the unit cannot usefully run invisibly.
type Sink interface {
	Init() error
	Apply(f render.Frame) error
}

// ConsoleSink writes frames to a writer, one boxed block per frame. It serves
// bench units and development runs without a panel attached.
type ConsoleSink struct {
	w     io.Writer
	width int
}

// NewConsoleSink creates a console sink with the given text width.
func NewConsoleSink(w io.Writer, width int) *ConsoleSink {
	if width <= 0 {
		width = render.DefaultWidth
	}
	return &ConsoleSink{w: w, width: width}
}

// Init verifies the sink has somewhere to write.
func (s *ConsoleSink) Init() error {
	if s.w == nil {
		return errors.New("console sink has no writer")
	}
	return nil
}

// Apply writes the frame as a fixed-width text block.
func (s *ConsoleSink) Apply(f render.Frame) error {
	rule := strings.Repeat("-", s.width+2)

	lines := []string{
		rule,
		f.Name,
		f.Department,
		fmt.Sprintf("%s  [net %s] [mq %s]", f.StatusLabel, f.NetworkGlyph, f.BrokerGlyph),
		f.QueueSummary,
	}
	if f.Requester != "" {
		lines = append(lines, f.Requester)
	}
	lines = append(lines, f.BodyPreview...)
	lines = append(lines, rule)

	_, err := fmt.Fprintln(s.w, strings.Join(lines, "\n"))
	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}
