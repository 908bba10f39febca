// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	designationstore "github.com/dalemusser/memberhub/internal/app/store/designations"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// defaultDesignations is the rank table seeded on first startup. Level 1
// is the presidency; the assignment engine resolves it by level, never by
// title, so titles can be renamed without code changes.
var defaultDesignations = []models.Designation{
	{Title: "President", Level: 1},
	{Title: "Vice President", Level: 2},
	{Title: "General Secretary", Level: 3},
	{Title: "Joint Secretary", Level: 4},
	{Title: "Organizing Secretary", Level: 5},
	{Title: "Office Secretary", Level: 6},
	{Title: "Finance Secretary", Level: 7},
	{Title: "Publicity Secretary", Level: 8},
	{Title: "Executive Member", Level: 9},
	{Title: "General Member", Level: 10},
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if !appCfg.SeedDesignations {
		return nil
	}
	return seedDesignations(ctx, deps, logger)
}

// seedDesignations fills the designation table. Idempotent: levels that
// already exist are left untouched.
func seedDesignations(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	store := designationstore.New(deps.MongoDatabase)
	inserted, err := store.Seed(ctx, defaultDesignations)
	if err != nil {
		logger.Error("designation seeding failed", zap.Error(err))
		return err
	}
	if inserted > 0 {
		logger.Info("seeded designations", zap.Int("inserted", inserted))
	}
	return nil
}
