// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the HTTP and gRPC transports.
//
// Listeners are bound when the server is created so address errors surface
// at startup. RunServer blocks until SIGINT, SIGTERM or SIGQUIT and then
// drains both transports.
package server
