// Package process runs local programs in reaction to committed list changes.
//
// Each command receives the ListDiff as JSON on stdin and the event metadata as
// TWENTYFIVE_* environment variables. Commands come from an allow-list loaded
// from a hooks file; nothing in a request can name a program to run.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/twentyfive/internal/logging"
	"github.com/aretw0/twentyfive/pkg/domain"
)

// DefaultTimeout bounds a single command run.
const DefaultTimeout = 10 * time.Second

// Result is the outcome of one command run.
type Result struct {
	Name     string
	Output   string
	Err      error
	Duration time.Duration
}

// Notifier executes its commands for every commit that changed a list.
type Notifier struct {
	commands []Command
	timeout  time.Duration
	baseDir  string
	logger   *slog.Logger

	wg sync.WaitGroup
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithTimeout bounds each command run. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(n *Notifier) {
		n.baseDir = dir
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// NewNotifier creates a Notifier for the given commands.
func NewNotifier(commands []Command, opts ...Option) *Notifier {
	n := &Notifier{
		commands: commands,
		timeout:  DefaultTimeout,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Len returns the number of registered commands. A nil Notifier has none.
func (n *Notifier) Len() int {
	if n == nil {
		return 0
	}
	return len(n.commands)
}

// Hooks returns an OnCommit hook that runs the commands in the background.
// Commits that left the list unchanged are skipped.
func (n *Notifier) Hooks() domain.Hooks {
	return domain.Hooks{
		OnCommit: func(_ context.Context, e *domain.OperationEvent) {
			if e.Diff == nil || len(n.commands) == 0 {
				return
			}
			n.wg.Add(1)
			go func() {
				defer n.wg.Done()
				n.Notify(context.Background(), e)
			}()
		},
	}
}

// Wait blocks until every background run started by Hooks has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Notify runs every matching command for the event, one after another.
func (n *Notifier) Notify(ctx context.Context, e *domain.OperationEvent) []Result {
	if e.Diff == nil {
		return nil
	}
	payload, err := json.Marshal(e.Diff)
	if err != nil {
		n.logger.Error("Failed to encode diff", "err", err)
		return nil
	}

	var results []Result
	for _, c := range n.commands {
		if len(c.Kinds) > 0 && !slices.Contains(c.Kinds, string(e.Kind)) {
			continue
		}
		res := n.run(ctx, c, e, payload)
		if res.Err != nil {
			n.logger.Warn("Hook failed",
				"hook", res.Name,
				"instance_id", e.InstanceID,
				"err", res.Err,
			)
		} else {
			n.logger.Debug("Hook ran",
				"hook", res.Name,
				"instance_id", e.InstanceID,
				"duration", res.Duration,
			)
		}
		results = append(results, res)
	}
	return results
}

func (n *Notifier) run(ctx context.Context, c Command, e *domain.OperationEvent, payload []byte) Result {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = n.baseDir
	cmd.Stdin = bytes.NewReader(payload)

	env := cmd.Environ()
	for k, v := range c.Environment {
		env = append(env, k+"="+v)
	}
	env = append(env,
		"TWENTYFIVE_INSTANCE="+e.InstanceID,
		"TWENTYFIVE_KIND="+string(e.Kind),
		"TWENTYFIVE_VERB="+string(e.Verb),
		"TWENTYFIVE_REVISION="+strconv.FormatUint(e.Diff.Revision, 10),
	)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Name:     c.Name,
		Output:   strings.TrimSpace(stdout.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		res.Err = fmt.Errorf("%s: %w: %s", c.Name, err, strings.TrimSpace(stderr.String()))
	}
	return res
}
