package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/workforce-portal/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the portal tables when they do not exist yet.
func Migrate(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		if _, err := GetQuerier(ctx, db).Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		return nil
	})
}
