/*
Package tracing gives every HTTP request a trace and span id.

A request carrying X-Trace-ID continues that trace; otherwise a new ULID is
minted. Both ids are echoed as response headers so a client report can be
matched to the server log. Finished spans are buffered and written to the
log by a single collector goroutine: failures at error level, everything
else at debug.

# Usage

	tracer := tracing.New("panelfs", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
