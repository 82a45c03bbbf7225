package nodelink

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/orchestree/orchestree/pkg/errors"
)

// Engine lays out DOT text and returns the resulting SVG document.
// Implementations must be safe for concurrent use.
type Engine interface {
	// Name identifies the engine and its configuration. It is part of
	// artifact cache keys.
	Name() string
	Render(ctx context.Context, dot string) ([]byte, error)
}

// DefaultTimeout bounds a single layout run.
const DefaultTimeout = 60 * time.Second

// Engine kinds accepted by [NewEngine].
const (
	EngineExec     = "exec"
	EngineEmbedded = "embedded"
)

// EngineOptions configures [NewEngine].
type EngineOptions struct {
	Path    string        // Binary for the exec engine (default "dot")
	Args    []string      // Arguments for the exec engine (default "-Tsvg")
	Timeout time.Duration // Per-run limit (default DefaultTimeout)
}

// NewEngine returns the engine of the given kind. An empty kind selects
// the exec engine.
func NewEngine(kind string, opts EngineOptions) (Engine, error) {
	switch strings.ToLower(kind) {
	case "", EngineExec:
		return &ExecEngine{Path: opts.Path, Args: opts.Args, Timeout: opts.Timeout}, nil
	case EngineEmbedded:
		return &EmbeddedEngine{Timeout: opts.Timeout}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown layout engine %q (want %s or %s)", kind, EngineExec, EngineEmbedded)
	}
}

// ExecEngine runs an external Graphviz binary, writing DOT to its stdin
// and reading SVG from its stdout.
type ExecEngine struct {
	Path    string
	Args    []string
	Timeout time.Duration
}

func (e *ExecEngine) path() string {
	if e.Path == "" {
		return "dot"
	}
	return e.Path
}

func (e *ExecEngine) args() []string {
	if len(e.Args) == 0 {
		return []string{"-Tsvg"}
	}
	return e.Args
}

func (e *ExecEngine) timeout() time.Duration {
	if e.Timeout <= 0 {
		return DefaultTimeout
	}
	return e.Timeout
}

// Name implements [Engine].
func (e *ExecEngine) Name() string {
	return "exec:" + e.path() + " " + strings.Join(e.args(), " ")
}

// Render implements [Engine]. Launch failures, non-zero exits and timeouts
// are LAYOUT_ENGINE_FAILURE errors carrying the captured stderr. If ctx
// itself is done, its error is returned instead.
func (e *ExecEngine) Render(ctx context.Context, dot string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.path(), e.args()...)
	cmd.Stdin = strings.NewReader(dot)
	cmd.WaitDelay = time.Second

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, stderrCause(&errBuf, runCtx.Err()),
			"%s timed out after %s", e.path(), e.timeout())
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, stderrCause(&errBuf, err), "%s: %v", e.path(), err)
	}
	if out.Len() == 0 {
		return nil, errors.Wrap(errors.ErrCodeLayoutEngine, stderrCause(&errBuf, nil), "%s produced no output", e.path())
	}
	return out.Bytes(), nil
}

// stderrCause prefers the engine's own diagnostics over the Go-level error.
func stderrCause(stderr *bytes.Buffer, fallback error) error {
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return stderrors.New(msg)
	}
	return fallback
}
