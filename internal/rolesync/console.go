package rolesync

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorRed    = "\033[0;31m"
	colorReset  = "\033[0m"
)

// console writes operator-facing status lines.
type console struct {
	w     io.Writer
	color bool
}

func (c *console) line(color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.color && color != "" {
		msg = color + msg + colorReset
	}
	fmt.Fprintln(c.w, msg)
}

func (c *console) green(format string, args ...any)  { c.line(colorGreen, format, args...) }
func (c *console) yellow(format string, args ...any) { c.line(colorYellow, format, args...) }
func (c *console) red(format string, args ...any)    { c.line(colorRed, format, args...) }
func (c *console) plain(format string, args ...any)  { c.line("", format, args...) }
func (c *console) blank()                            { fmt.Fprintln(c.w) }

// ConfirmFunc asks the operator a yes/no question.
type ConfirmFunc func(prompt string) (bool, error)

// PromptConfirm reads one answer line from in. Only "y" (any case) confirms;
// end of input counts as no.
func PromptConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	r := bufio.NewReader(in)
	return func(prompt string) (bool, error) {
		fmt.Fprint(out, prompt)
		answer, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
	}
}

// Always returns a ConfirmFunc with a fixed answer.
func Always(answer bool) ConfirmFunc {
	return func(string) (bool, error) { return answer, nil }
}
