package main

import (
	"fmt"
	"os"

	"go.ryu.dev/ryu/internal/xec"
)

// editText opens the user's $EDITOR (falling back to vi) on a
// temporary file seeded with initial, and returns whatever the user
// saved. Used by --edit to let a submission's PR body be written
// interactively instead of left blank.
func editText(initial string) (string, error) {
	f, err := os.CreateTemp("", "ryu-edit-*.md")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	cmd := xec.EditCommand(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %q: %w", editor, err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read edited file: %w", err)
	}
	return string(out), nil
}
