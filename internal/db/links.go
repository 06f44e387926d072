package db

import (
	"context"
	"errors"
	"fmt"
)

var errSelfLink = errors.New("a task cannot be its own subtask")

// Link makes child a subtask of parent. Linking twice is a no-op.
func (db *DB) Link(ctx context.Context, parentID, childID int64) error {
	return link(ctx, db.DB, parentID, childID)
}

func link(ctx context.Context, ex execer, parentID, childID int64) error {
	if parentID == childID {
		return errSelfLink
	}
	_, err := ex.ExecContext(ctx, `
		INSERT OR IGNORE INTO links (parent_id, child_id) VALUES (?, ?)
	`, parentID, childID)
	if err != nil {
		return fmt.Errorf("failed to link %d -> %d: %w", parentID, childID, err)
	}
	return nil
}

// Unlink removes the parent/child edge, if any
func (db *DB) Unlink(ctx context.Context, parentID, childID int64) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM links WHERE parent_id = ? AND child_id = ?
	`, parentID, childID)
	if err != nil {
		return fmt.Errorf("failed to unlink %d -> %d: %w", parentID, childID, err)
	}
	return nil
}
