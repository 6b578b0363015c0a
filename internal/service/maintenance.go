package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/cutscenes/internal/database/repository"
)

// MaintenanceService houses destructive actions surfaced through the TUI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes every stored cutscene and returns how many were removed. The schema
// stays intact so the app can keep running.
func (s *MaintenanceService) Reset(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	var n int64
	if err := repository.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		n, err = repository.DeleteAll(ctx, tx)
		if err != nil {
			return fmt.Errorf("reset cutscenes: %w", err)
		}
		return nil
	}); err != nil {
		return 0, err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return n, nil
}
