// Package prompt asks the user for values a command was not given.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/sarth-shah20/stasis-storage/internal/errdefs"
)

var (
	blue = color.New(color.FgBlue).SprintFunc()
	gray = color.New(color.FgHiBlack).SprintFunc()
	cyan = color.New(color.FgCyan).SprintFunc()
	red  = color.New(color.FgRed).SprintFunc()
)

// Option is one choice of a Select prompt.
type Option struct {
	Label string
	Value string
}

// Validator rejects an answer with a message shown to the user.
type Validator func(string) error

// Terminal prompts on a line based terminal. Invalid answers are reported and
// asked again.
type Terminal struct {
	in  *bufio.Reader
	fd  int // terminal file descriptor for masked input, -1 if none
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: bufio.NewReader(in), fd: -1, out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
	}
	return t
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		if err == io.EOF {
			fmt.Fprintln(t.out)
			return "", errdefs.Aborted("input closed")
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) ask(message string, validate Validator, read func() (string, error)) (string, error) {
	for {
		fmt.Fprint(t.out, blue(message)+" ")
		answer, err := read()
		if err != nil {
			return "", err
		}
		if validate != nil {
			if err := validate(answer); err != nil {
				fmt.Fprintln(t.out, red("✗ "+err.Error()))
				continue
			}
		}
		return answer, nil
	}
}

// Text asks for a line of text.
func (t *Terminal) Text(message string, validate Validator) (string, error) {
	return t.ask(message, validate, t.readLine)
}

// Secret asks for a value without echoing it when stdin is a terminal.
func (t *Terminal) Secret(message string, validate Validator) (string, error) {
	if t.fd < 0 {
		return t.ask(message, validate, t.readLine)
	}
	return t.ask(message, validate, func() (string, error) {
		b, err := term.ReadPassword(t.fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}

// Select asks to pick one option by number or value and returns its value.
func (t *Terminal) Select(message string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	fmt.Fprintln(t.out, blue(message))
	for i, o := range options {
		fmt.Fprintf(t.out, "  %s %d%s %s\n", cyan("►"), i+1, gray("."), o.Label)
	}

	answer, err := t.ask(gray(fmt.Sprintf("Enter your choice (1-%d):", len(options))), func(s string) error {
		if _, ok := pick(options, s); !ok {
			return fmt.Errorf("please choose between 1 and %d", len(options))
		}
		return nil
	}, t.readLine)
	if err != nil {
		return "", err
	}
	o, _ := pick(options, answer)
	return o.Value, nil
}

func pick(options []Option, answer string) (Option, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return Option{}, false
	}
	for _, o := range options {
		if answer != "" && (strings.EqualFold(answer, o.Value) || strings.EqualFold(answer, o.Label)) {
			return o, true
		}
	}
	return Option{}, false
}

// Confirm asks a yes/no question. An empty answer returns def.
func (t *Terminal) Confirm(message string, def bool) (bool, error) {
	hint := "(y/N)"
	if def {
		hint = "(Y/n)"
	}
	answer, err := t.ask(message+" "+gray(hint), func(s string) error {
		switch strings.ToLower(s) {
		case "", "y", "yes", "n", "no":
			return nil
		}
		return fmt.Errorf("please answer y or n")
	}, t.readLine)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return def, nil
}

// None never asks. It is used with --no-input and when stdin is not a
// terminal: missing values become validation errors and confirmations take
// their default answer.
type None struct{}

func (None) Text(message string, _ Validator) (string, error) {
	return "", errdefs.Validation("%s input required (interactive input is disabled)", strings.TrimSuffix(message, ":"))
}

func (None) Secret(message string, _ Validator) (string, error) {
	return "", errdefs.Validation("%s input required (interactive input is disabled)", strings.TrimSuffix(message, ":"))
}

func (None) Select(message string, _ []Option) (string, error) {
	return "", errdefs.Validation("%s input required (interactive input is disabled)", strings.TrimSuffix(message, ":"))
}

func (None) Confirm(_ string, def bool) (bool, error) {
	return def, nil
}
