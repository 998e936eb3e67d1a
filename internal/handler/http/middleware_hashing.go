// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/service"
)

// HashHeader carries the hex HMAC-SHA256 of a request or response body.
const HashHeader = "HashSHA256"

// withIntegrityCheck verifies the HashSHA256 header of incoming bodies and
// signs outgoing ones. It is a pass-through when no hash key is configured.
//
// Requests without the header are accepted unchecked; a header that does not
// match the body is rejected with 400 INVALID_DATA. Signed bodies are read
// under the same ceiling as pushes.
func (h *Handler) withIntegrityCheck(next http.Handler) http.Handler {
	if h.hasher == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		if signature := r.Header.Get(HashHeader); signature != "" && r.Body != nil {
			body, err := h.readBody(w, r)
			if err != nil {
				log.Warn().Err(err).Msg("failed to read signed request body")
				writeError(w, r, err)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !h.hasher.Verify(body, signature) {
				log.Warn().Str("hash_from_request", signature).Msg("hashes are not equal")
				writeError(w, r, errIntegrityCheckFailed)
				return
			}
		}

		sw := &signingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		w.Header().Set(HashHeader, h.hasher.SumHex(sw.body.Bytes()))
		w.WriteHeader(sw.status)
		if _, err := w.Write(sw.body.Bytes()); err != nil {
			log.Err(err).Msg("failed to write signed response")
		}
	})
}

// readBody reads the request body up to maxPushBody. Exceeding the limit
// yields ErrDataTooLarge, any other failure ErrInvalidData.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	reader := r.Body
	if h.maxPushBody > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxPushBody)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", service.ErrDataTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidData, err)
	}
	return body, nil
}

// signingResponseWriter buffers the response so its hash can be sent as a
// header before the body.
type signingResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *signingResponseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *signingResponseWriter) Write(data []byte) (int, error) {
	return w.body.Write(data)
}
