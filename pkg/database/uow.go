package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// RunInTx runs fn inside one transaction. The transaction is committed only
// when fn returns nil; any error or panic rolls it back before returning, so
// no partial write survives a failed unit of work.
func RunInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if rbErr := tx.Rollback().Error; rbErr != nil && err == nil {
			err = fmt.Errorf("rollback: %w", rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
