// Package prompt asks the operator yes/no questions at release checkpoints.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks a yes/no question and reports the answer.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Terminal reads answers line by line from an input stream.
// Only "y" or "yes" (any case) count as yes; an empty line or EOF is no.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal reading from in and writing questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm prints "\n<question> (y/N): " and reads one line.
func (t *Terminal) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprintf(t.out, "\n%s (y/N): ", question); err != nil {
		return false, fmt.Errorf("writing prompt: %w", err)
	}

	response, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
