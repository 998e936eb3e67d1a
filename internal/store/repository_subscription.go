// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/models"
)

type subscriptionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSubscriptionRepository constructs a [SubscriptionRepository] over the
// "subscriptions" table.
func NewSubscriptionRepository(db *DB, logger *logger.Logger) SubscriptionRepository {
	logger.Debug().Msg("creating subscription repository")
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *subscriptionRepository) GrantSubscription(ctx context.Context, sub models.Subscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	var expiresAt sql.NullTime
	if sub.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *sub.ExpiresAt, Valid: true}
	}

	query, args, err := r.db.builder().
		Insert(tableSubscriptions).
		Columns(columnUserID, columnAppID, columnStatus, columnExpiresAt, columnCreatedAt).
		Values(sub.UserID, sub.AppID, sub.Status, expiresAt, sub.CreatedAt).
		Suffix(upsertSubscriptionSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.db.withRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*subscriptionRepository.GrantSubscription").
			Int64("user_id", sub.UserID).
			Str("app_id", sub.AppID).
			Msg("error granting subscription")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *subscriptionRepository) ListSubscriptions(ctx context.Context, userID int64) ([]models.Subscription, error) {
	query, args, err := r.db.builder().
		Select(columnUserID, columnAppID, columnStatus, columnExpiresAt, columnCreatedAt).
		From(tableSubscriptions).
		Where(sq.Eq{columnUserID: userID}).
		OrderBy(columnAppID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var subs []models.Subscription
	err = r.db.withRetry(ctx, func() error {
		subs = subs[:0]
		rows, queryErr := r.db.QueryContext(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		for rows.Next() {
			var (
				sub       models.Subscription
				expiresAt sql.NullTime
			)
			if scanErr := rows.Scan(&sub.UserID, &sub.AppID, &sub.Status, &expiresAt, &sub.CreatedAt); scanErr != nil {
				return scanErr
			}
			if expiresAt.Valid {
				t := expiresAt.Time
				sub.ExpiresAt = &t
			}
			subs = append(subs, sub)
		}
		return rows.Err()
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*subscriptionRepository.ListSubscriptions").
			Int64("user_id", userID).
			Msg("error listing subscriptions")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return subs, nil
}
