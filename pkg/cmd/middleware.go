package cmd

// Middleware wraps an executor (e.g. logging, metrics, tracing).
type Middleware func(Executor) Executor

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(run Executor, mws ...Middleware) Executor {
	for i := len(mws) - 1; i >= 0; i-- {
		run = mws[i](run)
	}
	return run
}
