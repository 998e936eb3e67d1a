// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated means neither an HTTP nor a gRPC address is
// configured. The server refuses to start in that case.
var errNoHandlersAreCreated = errors.New("no handlers are created")
