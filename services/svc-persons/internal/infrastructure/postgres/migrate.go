package postgres

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/architeacher/persons/pkg/logger"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Migrate applies the SQL files of source to the database at dsn. Down
// reverts a single step. Running against an up-to-date schema is not an
// error.
func Migrate(source fs.FS, dsn string, direction Direction, log logger.Logger) error {
	driver, err := iofs.New(source, ".")
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", driver, dsn)
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Warn().AnErr("source_error", sourceErr).AnErr("database_error", dbErr).
				Msg("closing migration instance")
		}
	}()

	switch direction {
	case DirectionUp:
		err = m.Up()
	case DirectionDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations %s: %w", direction, err)
	}

	version, dirty, versionErr := m.Version()
	if versionErr != nil && !errors.Is(versionErr, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", versionErr)
	}

	log.Info().
		Str("direction", string(direction)).
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("migrations applied")

	return nil
}
