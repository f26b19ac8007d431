// Package clip copies rendered results to the user's clipboard.
package clip

import (
	"errors"
	"fmt"
	"io"
	"os"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Method is how the content was made available.
type Method string

const (
	MethodNative Method = "native" // OS clipboard
	MethodOSC52  Method = "osc52"  // terminal escape sequence
	MethodFile   Method = "file"   // temp file, when no clipboard is reachable
)

// Result reports where the content went.
type Result struct {
	Method   Method
	FilePath string
}

type strategy struct {
	method Method
	write  func(text string) error
}

// Tried in order; overridden in tests.
var strategies = []strategy{
	{MethodNative, atotto.WriteAll},
	{MethodOSC52, func(text string) error { return writeOSC52(os.Stderr, text) }},
}

// Copy puts text on the clipboard, falling back to the terminal clipboard
// and finally to a temp file.
func Copy(text string) (Result, error) {
	if text == "" {
		return Result{}, errors.New("nothing to copy")
	}
	for _, s := range strategies {
		if err := s.write(text); err == nil {
			return Result{Method: s.method}, nil
		}
	}
	path, err := spill(text)
	if err != nil {
		return Result{}, fmt.Errorf("no clipboard available and temp file failed: %w", err)
	}
	return Result{Method: MethodFile, FilePath: path}, nil
}

// Terminals drop or block larger OSC52 payloads.
const osc52LimitBytes = 100_000

func writeOSC52(out *os.File, text string) error {
	if !term.IsTerminal(int(out.Fd())) {
		return errors.New("not a terminal")
	}
	if len(text) > osc52LimitBytes {
		return fmt.Errorf("%d bytes exceeds the OSC52 limit of %d", len(text), osc52LimitBytes)
	}
	return sendOSC52(out, text)
}

func sendOSC52(w io.Writer, text string) error {
	seq := osc52.New(text).Limit(osc52LimitBytes)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}

func spill(text string) (string, error) {
	f, err := os.CreateTemp("", "jurado-resultado-*.txt")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
