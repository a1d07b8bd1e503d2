package actiflow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/actiflow/actiflow/pkg/domain"
)

// ContentRenderer transforms note text before output. This lets the CLI
// render markdown to ANSI without coupling the core package to a TUI stack.
type ContentRenderer func(string) (string, error)

// Runner drives an interactive execution loop over provided IO.
// Keeping IO injectable makes the loop testable and reusable across
// frontends.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// NewRunner creates a Runner. Input and Output must be set before Run
// (typically os.Stdin / os.Stdout).
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the workflow until a terminal node is reached or input ends.
func (r *Runner) Run(ctx context.Context, engine *Engine, def *domain.Definition, instanceID string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	reader := bufio.NewReader(r.Input)

	payload, err := engine.Begin(ctx, def, instanceID)
	if err != nil {
		return fmt.Errorf("failed to begin instance: %w", err)
	}

	for {
		if payload.IsChoice {
			for _, opt := range payload.Choices {
				label := opt.DisplayText
				if opt.Condition != "" {
					label = fmt.Sprintf("%s [%s]", label, opt.Condition)
				}
				fmt.Fprintf(r.Output, "  %d) %s\n", opt.Index+1, label)
			}

			index, err := r.readChoice(reader, len(payload.Choices))
			if err == io.EOF {
				return nil
			}
			if err != nil {
				fmt.Fprintf(r.Output, "%v\n", err)
				continue
			}
			payload, err = engine.AdvanceChoice(ctx, def, instanceID, index)
			if err != nil {
				return fmt.Errorf("failed to advance: %w", err)
			}
			continue
		}

		r.printText(payload.Text)

		next, advanced, err := engine.Continue(ctx, def, instanceID)
		if err != nil {
			return fmt.Errorf("failed to continue: %w", err)
		}
		if !advanced {
			if !r.Headless {
				fmt.Fprintln(r.Output, "--- workflow finished ---")
			}
			return nil
		}
		payload = next
	}
}

func (r *Runner) printText(text string) {
	if text == "" {
		return
	}
	if r.Renderer != nil {
		if rendered, err := r.Renderer(text); err == nil {
			fmt.Fprint(r.Output, rendered)
			return
		}
	}
	fmt.Fprintln(r.Output, text)
}

func (r *Runner) readChoice(reader *bufio.Reader, optionCount int) (int, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return 0, io.EOF
	}
	input := strings.TrimSpace(line)

	n, convErr := strconv.Atoi(input)
	if convErr != nil || n < 1 || n > optionCount {
		return 0, fmt.Errorf("please enter a number between 1 and %d", optionCount)
	}
	return n - 1, nil
}
