package tictactoe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

var ErrInterrupted = errors.New("input interrupted")

// ReadlinePrompter reads human moves from the terminal.
type ReadlinePrompter struct {
	instance  *readline.Instance
	closeOnce sync.Once
	closeErr  error
}

func NewReadlinePrompter() (*ReadlinePrompter, error) {
	instance, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}

	return &ReadlinePrompter{instance: instance}, nil
}

// Prompt reads one trimmed line. Readline cannot be interrupted, so a done ctx
// closes the terminal and no further prompts are possible.
func (that *ReadlinePrompter) Prompt(ctx context.Context, prompt string) (string, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = that.Close()
	})
	defer stop()

	that.instance.SetPrompt(prompt)

	line, err := that.instance.Readline()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("prompt cancelled: %w", ctxErr)
	}

	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}

	if err != nil {
		return "", fmt.Errorf("failed to read line: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// Close releases the terminal. It is safe to call more than once.
func (that *ReadlinePrompter) Close() error {
	that.closeOnce.Do(func() {
		if err := that.instance.Close(); err != nil {
			that.closeErr = fmt.Errorf("failed to close terminal: %w", err)
		}
	})

	return that.closeErr
}
