// Package editor implements the editor collaborator: it spawns the user's
// text editor on a temp file seeded with a message body and commented-out
// help text, then reads back whatever the user left behind.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fumiya-kume/reorg/pkg/errors"
)

// Config carries the editor command resolution settings from pkg/config.
type Config struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// EmptyMessage is returned (as an error) when the edited body is empty
// after stripping comment lines and trimming whitespace.
var EmptyMessage = errors.EditorError(fmt.Errorf("edited message is empty"))

// Edit spawns the resolved editor on a temp file seeded with initialBody
// followed by commentHelp rendered as "# "-prefixed lines, waits for the
// editor process to exit, then returns the file content with comment
// lines stripped and the result trimmed. An empty result is EmptyMessage.
func Edit(cfg Config, initialBody string, commentHelp []string) (string, error) {
	path, err := tempMessagePath()
	if err != nil {
		return "", errors.EditorError(err)
	}
	defer os.Remove(path)

	seed := seedContent(initialBody, commentHelp)
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		return "", errors.EditorError(err)
	}

	command, args, err := ResolveEditor(cfg)
	if err != nil {
		return "", errors.EditorError(err)
	}

	cmd := exec.Command(command, append(args, path)...) // #nosec G204 -- command resolved from trusted config/env, not user input
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := runWithTimeout(cmd, cfg.Timeout); err != nil {
		return "", errors.EditorError(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.EditorError(err)
	}

	body := strings.TrimSpace(stripComments(string(raw)))
	if body == "" {
		return "", EmptyMessage
	}
	return body, nil
}

// ResolveEditor determines the editor command and its arguments, in order:
// cfg.Command (set from REORG_EDITOR or reorg.editor.command), then $VISUAL,
// then $EDITOR, then a short list of common fallbacks.
func ResolveEditor(cfg Config) (string, []string, error) {
	if cfg.Command != "" {
		if path, err := exec.LookPath(cfg.Command); err == nil {
			return path, cfg.Args, nil
		}
		return cfg.Command, cfg.Args, nil
	}

	for _, envVar := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			fields := strings.Fields(v)
			command := fields[0]
			args := fields[1:]
			if path, err := exec.LookPath(command); err == nil {
				return path, args, nil
			}
			return command, args, nil
		}
	}

	for _, candidate := range []string{"vi", "vim", "nano"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil, nil
		}
	}

	return "", nil, fmt.Errorf("no editor found: set $EDITOR, $VISUAL, or reorg.editor.command")
}

func tempMessagePath() (string, error) {
	dir := os.TempDir()
	name := fmt.Sprintf("reorg-msg-%s.txt", uuid.NewString())
	return filepath.Join(dir, name), nil
}

func seedContent(initialBody string, commentHelp []string) string {
	var b strings.Builder
	b.WriteString(initialBody)
	if !strings.HasSuffix(initialBody, "\n") {
		b.WriteString("\n")
	}
	for _, line := range commentHelp {
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func stripComments(content string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimLeft(l, " \t"), "#") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

func runWithTimeout(cmd *exec.Cmd, timeout time.Duration) error {
	if timeout <= 0 {
		return cmd.Run()
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		return fmt.Errorf("editor timed out after %s", timeout)
	}
}
