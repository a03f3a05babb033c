package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"library-console/library"
)

// errInputClosed means stdin reached EOF in the middle of a prompt.
var errInputClosed = errors.New("input closed")

// console is one interactive run: a line reader, an output writer and the
// manager every menu option calls.
type console struct {
	in  *bufio.Scanner
	out io.Writer
	mgr *library.LibraryManager

	// ttyFd is the terminal behind in, or -1 when input is piped.
	ttyFd int
}

func newConsole(in io.Reader, out io.Writer, mgr *library.LibraryManager) *console {
	c := &console{in: bufio.NewScanner(in), out: out, mgr: mgr, ttyFd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.ttyFd = int(f.Fd())
	}
	return c
}

// ask prints prompt and returns the next trimmed line.
func (c *console) ask(prompt string) (string, error) {
	line, err := c.readLine(prompt)
	return strings.TrimSpace(line), err
}

// readLine prints prompt and returns the next line without its terminator.
func (c *console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSuffix(c.in.Text(), "\r"), nil
}

// askSecret reads a password exactly as typed, masked when input is a
// terminal and as a plain line otherwise.
func (c *console) askSecret(prompt string) (string, error) {
	if c.ttyFd < 0 {
		return c.readLine(prompt)
	}
	fmt.Fprint(c.out, prompt)
	b, err := term.ReadPassword(c.ttyFd)
	// The terminal swallowed the user's newline.
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// askID reads a positive integer id. ok is false, after printing why, when
// the line is not one.
func (c *console) askID(prompt string) (id int64, ok bool, err error) {
	s, err := c.ask(prompt)
	if err != nil {
		return 0, false, err
	}
	id, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil || id <= 0 {
		c.failure("Invalid ID: %s", s)
		return 0, false, nil
	}
	return id, true, nil
}

// askFields prompts for each label in order.
func (c *console) askFields(labels ...string) ([]string, error) {
	vals := make([]string, len(labels))
	for i, l := range labels {
		v, err := c.ask(l + ": ")
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// askNewSecret prompts for a password and its confirmation.
func (c *console) askNewSecret(owner string) (secret, confirm string, err error) {
	if secret, err = c.askSecret(fmt.Sprintf("Password for %s: ", owner)); err != nil {
		return "", "", err
	}
	if confirm, err = c.askSecret("Confirm password: "); err != nil {
		return "", "", err
	}
	return secret, confirm, nil
}
