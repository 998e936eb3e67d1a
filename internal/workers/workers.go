// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run runs every worker concurrently. The first failure cancels the others
// and is returned once all have exited.
func (w *Workers) Run(ctx context.Context) error {
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, worker := range w.workers {
		p.Go(worker.Run)
	}
	return p.Wait()
}
