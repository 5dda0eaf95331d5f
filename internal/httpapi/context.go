package httpapi

import (
	"context"
)

// serverBaseCtx is canceled when the process begins shutting down. Handlers
// join it with the request context so an in-flight upscale stops on either
// signal. Defaults to Background until main wires the real one.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level shutdown context.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context from a that is additionally canceled when
// b is done. Values and any deadline of a are preserved. The returned
// cancel must be called when the handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
