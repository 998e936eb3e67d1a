// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

// Server is the lifecycle of the whole transport layer.
type Server interface {
	// RunServer serves requests and blocks until a stop signal arrives and
	// all transports are drained.
	RunServer()

	// Shutdown gracefully stops every transport.
	Shutdown()
}
