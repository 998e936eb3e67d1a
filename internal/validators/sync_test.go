// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-sync-keeper/models"
)

// ---------------------------------------------------------------------------
// dispatch
// ---------------------------------------------------------------------------

func TestSyncValidator_Dispatch(t *testing.T) {
	v := NewSyncValidator()
	ctx := context.Background()

	req := models.PushRequest{Data: json.RawMessage(`{}`), DeviceID: "d1"}
	assert.NoError(t, v.Validate(ctx, req))
	assert.NoError(t, v.Validate(ctx, &req))

	user := models.User{Login: "a", Password: "b"}
	assert.NoError(t, v.Validate(ctx, user))
	assert.NoError(t, v.Validate(ctx, &user))

	assert.ErrorIs(t, v.Validate(ctx, 42), ErrUnsupportedType)
}

// ---------------------------------------------------------------------------
// push requests
// ---------------------------------------------------------------------------

func TestSyncValidator_PushRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.PushRequest
		fields  []string
		wantErr error
	}{
		{"object", models.PushRequest{Data: json.RawMessage(`{"a":1}`), DeviceID: "d"}, nil, nil},
		{"array", models.PushRequest{Data: json.RawMessage(` [1,2] `), DeviceID: "d"}, nil, nil},
		{"null data", models.PushRequest{Data: json.RawMessage(`null`), DeviceID: "d"}, nil, ErrInvalidData},
		{"missing data", models.PushRequest{DeviceID: "d"}, nil, ErrInvalidData},
		{"string data", models.PushRequest{Data: json.RawMessage(`"x"`), DeviceID: "d"}, nil, ErrInvalidData},
		{"number data", models.PushRequest{Data: json.RawMessage(`12`), DeviceID: "d"}, nil, ErrInvalidData},
		{"broken object", models.PushRequest{Data: json.RawMessage(`{"a":`), DeviceID: "d"}, nil, ErrInvalidData},
		{"missing device", models.PushRequest{Data: json.RawMessage(`{}`)}, nil, ErrMissingDeviceID},
		{"long device", models.PushRequest{Data: json.RawMessage(`{}`), DeviceID: strings.Repeat("d", 257)}, nil, ErrDeviceIDTooLong},
		{"data checked first", models.PushRequest{Data: json.RawMessage(`null`)}, nil, ErrInvalidData},
		{"only device field", models.PushRequest{Data: json.RawMessage(`null`), DeviceID: "d"}, []string{FieldDeviceID}, nil},
		{"unknown field", models.PushRequest{}, []string{"version"}, ErrUnknownField},
	}

	v := NewSyncValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.req, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// users
// ---------------------------------------------------------------------------

func TestSyncValidator_User(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		fields  []string
		wantErr error
	}{
		{"valid", models.User{Login: "alice", Password: "pw"}, nil, nil},
		{"empty login", models.User{Password: "pw"}, nil, ErrEmptyLogin},
		{"long login", models.User{Login: strings.Repeat("l", 129), Password: "pw"}, nil, ErrLoginTooLong},
		{"empty password", models.User{Login: "alice"}, nil, ErrEmptyPassword},
		{"login only", models.User{Login: "alice"}, []string{FieldLogin}, nil},
	}

	v := NewSyncValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.user, tt.fields...)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIsStructuredJSON(t *testing.T) {
	assert.True(t, IsStructuredJSON([]byte(`{}`)))
	assert.True(t, IsStructuredJSON([]byte("\n[]\n")))
	assert.False(t, IsStructuredJSON(nil))
	assert.False(t, IsStructuredJSON([]byte(`true`)))
}
