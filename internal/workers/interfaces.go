// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the client's background jobs.
//
// A [Worker] blocks in Run until its context is cancelled or it hits an
// error it cannot recover from. [Workers] runs several of them and stops the
// rest as soon as one fails.
package workers

import "context"

// Worker is a long-running background job.
type Worker interface {
	// Run blocks until ctx is done, returning nil, or until the worker
	// cannot continue, returning the reason.
	Run(ctx context.Context) error
}
