// Package ui runs the fzf pickers used outside the player: catalog and
// history selection, confirmations and free-text prompts.
//
// Items reach fzf on stdin as plain text. No --preview or other
// shell-evaluated option ever carries catalog data.
package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the picker is dismissed with esc or ctrl-c.
var ErrCancelled = errors.New("selection cancelled")

// lookPath finds the fzf binary.
var lookPath = exec.LookPath

// Select shows items in fzf and returns the index of the chosen one.
func Select(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	out, err := run(numbered(items),
		"--prompt", prompt+" > ",
		"--height", "40%",
		"--reverse",
		"--with-nth", "2..",
		"--delimiter", "\t",
		"--no-multi",
		"--cycle",
	)
	if err != nil {
		return -1, err
	}
	return parseSelection(out, len(items))
}

// Confirm asks a yes/no question.
func Confirm(prompt string) (bool, error) {
	idx, err := Select(prompt, []string{"Yes", "No"})
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}

// Input prompts for one line of free text.
func Input(prompt string) (string, error) {
	// fzf exits 1 with --print-query when nothing matches; the query is
	// still printed.
	out, err := run("",
		"--prompt", prompt+" > ",
		"--height", "10%",
		"--reverse",
		"--print-query",
		"--no-info",
	)
	var exitErr *exec.ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.ExitCode() == 1) {
		return "", err
	}

	query := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if query == "" {
		return "", fmt.Errorf("no input provided")
	}
	return query, nil
}

func run(input string, args ...string) (string, error) {
	path, err := lookPath("fzf")
	if err != nil {
		return "", fmt.Errorf("fzf not found in PATH: %w", err)
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stderr = os.Stderr
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
			return "", ErrCancelled
		}
		return stdout.String(), fmt.Errorf("fzf failed: %w", err)
	}
	return stdout.String(), nil
}

// numbered prefixes each item with its index and a tab so the choice can
// be mapped back even when titles repeat.
func numbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		item = strings.NewReplacer("\t", " ", "\n", " ").Replace(item)
		fmt.Fprintf(&b, "%d\t%s\n", i, item)
	}
	return b.String()
}

func parseSelection(out string, n int) (int, error) {
	line := strings.TrimSpace(out)
	if line == "" {
		return -1, fmt.Errorf("no selection made")
	}

	field, _, _ := strings.Cut(line, "\t")
	idx, err := strconv.Atoi(field)
	if err != nil {
		return -1, fmt.Errorf("parsing selection index: %w", err)
	}
	if idx < 0 || idx >= n {
		return -1, fmt.Errorf("selection index %d out of range", idx)
	}
	return idx, nil
}
