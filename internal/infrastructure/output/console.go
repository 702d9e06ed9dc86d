package output

import (
	"bufio"
	"fmt"
	"io"
)

// ConsoleWriter prints one symbol per line
type ConsoleWriter struct {
	out io.Writer
}

// NewConsoleWriter creates a writer on out, usually os.Stdout
func NewConsoleWriter(out io.Writer) *ConsoleWriter {
	return &ConsoleWriter{out: out}
}

// Write prints the symbols in the given order. Nothing is printed for an empty list.
func (w *ConsoleWriter) Write(symbols []string) error {
	buf := bufio.NewWriter(w.out)
	for _, symbol := range symbols {
		if _, err := buf.WriteString(symbol + "\n"); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
