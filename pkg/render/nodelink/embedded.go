package nodelink

import (
	"bytes"
	"context"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/orchestree/orchestree/pkg/errors"
)

// EmbeddedEngine renders DOT in-process with a WebAssembly build of
// Graphviz. Each call instantiates its own runtime.
type EmbeddedEngine struct {
	Timeout time.Duration
}

// Name implements [Engine].
func (e *EmbeddedEngine) Name() string { return "embedded:graphviz" }

// Render implements [Engine].
func (e *EmbeddedEngine) Render(ctx context.Context, dot string) ([]byte, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gv, err := graphviz.New(runCtx)
	if err != nil {
		return nil, e.fail(ctx, runCtx, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, e.fail(ctx, runCtx, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(runCtx, g, graphviz.SVG, &buf); err != nil {
		return nil, e.fail(ctx, runCtx, err, "render")
	}
	return buf.Bytes(), nil
}

func (e *EmbeddedEngine) fail(ctx, runCtx context.Context, err error, stage string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeLayoutEngine, err, "embedded graphviz timed out during %s", stage)
	}
	return errors.Wrap(errors.ErrCodeLayoutEngine, err, "embedded graphviz: %s", stage)
}
