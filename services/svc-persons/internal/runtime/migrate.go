package runtime

import (
	"context"
	"fmt"

	"github.com/architeacher/persons/services/svc-persons/internal/config"
	infraPostgres "github.com/architeacher/persons/services/svc-persons/internal/infrastructure/postgres"
	"github.com/architeacher/persons/services/svc-persons/migrations"
)

// Migrate resolves configuration, secrets included, and moves the schema in
// the given direction.
func Migrate(ctx context.Context, direction infraPostgres.Direction, envFiles ...string) error {
	deps, err := initializeDependencies(ctx, nil, envFiles, migrationOptions(ctx)...)
	if err != nil {
		return err
	}

	if deps.config.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need the %q driver, got %q", config.DriverPostgres, deps.config.Database.Driver)
	}

	return infraPostgres.Migrate(migrations.FS, deps.config.Database.DSN(), direction, deps.infra.logger)
}
