// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "strings"

// Table and column names shared by the SQL stores and the migrations.
const (
	tableBlobs = "blobs"

	columnBlobKey   = "blob_key"
	columnPayload   = "payload"
	columnMetadata  = "metadata"
	columnSize      = "size"
	columnUpdatedAt = "updated_at"

	tableUsers = "users"

	columnUserID       = "user_id"
	columnLogin        = "login"
	columnPasswordHash = "password_hash"
	columnCreatedAt    = "created_at"

	tableSubscriptions = "subscriptions"

	columnAppID     = "app_id"
	columnStatus    = "status"
	columnExpiresAt = "expires_at"
)

// upsertBlobSuffix turns the blob INSERT into an upsert. Both PostgreSQL
// and SQLite accept the same ON CONFLICT syntax.
const upsertBlobSuffix = `ON CONFLICT (blob_key) DO UPDATE SET
	payload = excluded.payload,
	metadata = excluded.metadata,
	size = excluded.size,
	updated_at = excluded.updated_at`

const upsertSubscriptionSuffix = `ON CONFLICT (user_id, app_id) DO UPDATE SET
	status = excluded.status,
	expires_at = excluded.expires_at`

// likePrefixExpr matches keys starting with the escaped prefix.
const likePrefixExpr = columnBlobKey + ` LIKE ? ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes the LIKE wildcards in s.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
