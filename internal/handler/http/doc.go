// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the REST transport of the sync server.
//
// Routes:
//
//	POST   /api/user/register
//	POST   /api/user/login
//	GET    /api/version
//	GET    /sync/{app}/pull?version={current|N}
//	POST   /sync/{app}/push
//	GET    /sync/{app}/meta
//	DELETE /sync/{app}
//
// Every failure is answered with the {success:false, error, code} envelope.
// Tracing, access logging, CORS and compression wrap every route; the /sync
// routes additionally run behind bearer authentication, a per-user rate
// limiter and the optional HashSHA256 integrity check.
package http
