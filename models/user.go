// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User is an account able to authenticate against the sync service.
type User struct {
	// UserID is assigned by the storage layer.
	UserID int64 `json:"-"`

	Login string `json:"login"`

	// Password is the plain-text password received from the client.
	// It is never persisted.
	Password string `json:"password,omitempty"`

	// PasswordHash is the bcrypt hash persisted in storage.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"-"`
}

func (u User) TableName() string {
	return "users"
}
