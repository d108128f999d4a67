package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robalyx/presencerelay/internal/database/dbretry"
	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// LinkModel handles database operations for Discord to Steam account links.
type LinkModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewLink creates a LinkModel with database access.
func NewLink(db *bun.DB, logger *zap.Logger) *LinkModel {
	return &LinkModel{
		db:     db,
		logger: logger.Named("db_link"),
	}
}

// Create binds a Discord user to a Steam account.
// Both sides are checked inside one transaction so neither can end up bound twice.
func (r *LinkModel) Create(ctx context.Context, record *types.LinkRecord) error {
	return dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		var existing types.LinkRecord

		err := tx.NewSelect().Model(&existing).
			Where("chat_user_id = ?", record.ChatUserID).
			Scan(ctx)
		switch {
		case err == nil:
			if existing.ExternalAccountID == record.ExternalAccountID {
				return types.ErrAlreadyLinkedSelf
			}
			return types.ErrAlreadyLinkedOther
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check existing link: %w (chatUserID=%d)", err, record.ChatUserID)
		}

		exists, err := tx.NewSelect().Model((*types.LinkRecord)(nil)).
			Where("external_account_id = ?", record.ExternalAccountID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check existing link: %w (accountID=%d)", err, record.ExternalAccountID)
		}
		if exists {
			return types.ErrAlreadyLinkedOther
		}

		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create link: %w (chatUserID=%d)", err, record.ChatUserID)
		}

		r.logger.Debug("Created link",
			zap.Uint64("chatUserID", record.ChatUserID),
			zap.Uint64("accountID", record.ExternalAccountID))

		return nil
	})
}

// DeleteByChatUser removes the link of a Discord user and returns the removed record.
// Returns ErrLinkNotFound if the user had no link.
func (r *LinkModel) DeleteByChatUser(ctx context.Context, chatUserID uint64) (*types.LinkRecord, error) {
	var record types.LinkRecord

	err := dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&record).
			Where("chat_user_id = ?", chatUserID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrLinkNotFound
			}
			return fmt.Errorf("failed to get link: %w (chatUserID=%d)", err, chatUserID)
		}

		_, err = tx.NewDelete().Model((*types.LinkRecord)(nil)).
			Where("chat_user_id = ?", chatUserID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete link: %w (chatUserID=%d)", err, chatUserID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// GetByChatUser retrieves the link of a Discord user.
func (r *LinkModel) GetByChatUser(ctx context.Context, chatUserID uint64) (*types.LinkRecord, error) {
	return r.getWhere(ctx, "chat_user_id = ?", chatUserID)
}

// GetByExternalAccount retrieves the link of a Steam account.
func (r *LinkModel) GetByExternalAccount(ctx context.Context, accountID uint64) (*types.LinkRecord, error) {
	return r.getWhere(ctx, "external_account_id = ?", accountID)
}

// List returns every link ordered by link time.
func (r *LinkModel) List(ctx context.Context) ([]*types.LinkRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.LinkRecord, error) {
		var records []*types.LinkRecord

		err := r.db.NewSelect().Model(&records).
			Order("linked_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list links: %w", err)
		}

		return records, nil
	})
}

func (r *LinkModel) getWhere(ctx context.Context, query string, id uint64) (*types.LinkRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.LinkRecord, error) {
		var record types.LinkRecord

		err := r.db.NewSelect().Model(&record).
			Where(query, id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrLinkNotFound
			}
			return nil, fmt.Errorf("failed to get link: %w (id=%d)", err, id)
		}

		return &record, nil
	})
}
