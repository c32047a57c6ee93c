package worker

import "context"

// Dispatcher hands a job to the pool for exactly one runner invocation.
type Dispatcher struct {
	pool   *Pool
	runner *JobRunner
}

func NewDispatcher(pool *Pool, runner *JobRunner) *Dispatcher {
	return &Dispatcher{pool: pool, runner: runner}
}

func (d *Dispatcher) Dispatch(ownerID, requestID string) error {
	return d.pool.Submit(func(ctx context.Context) error {
		return d.runner.Run(ctx, ownerID, requestID)
	})
}
