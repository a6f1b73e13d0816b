package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	dsnFlag           = "dsn"
	migrationPathFlag = "migrations-path"
	downFlag          = "down"
)

type flags struct {
	dsn            string
	migrationsPath string
	down           bool
}

func main() {
	f := getFlagsValues()
	validateFlags(f)
	if f.down {
		rollback(f)
		return
	}
	makeMigrations(f)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() flags {
	var f flags
	pflag.StringVarP(&f.dsn, dsnFlag, "d", os.Getenv("STYLEHUB_SQL_DB"),
		"postgres connection url, STYLEHUB_SQL_DB by default")
	pflag.StringVarP(&f.migrationsPath, migrationPathFlag, "m", "migrations",
		"directory with migration files")
	pflag.BoolVar(&f.down, downFlag, false, "roll back the last migration")
	pflag.Parse()
	return f
}

func validateFlags(f flags) {
	var errs []error

	if f.dsn == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", dsnFlag))
	}

	if f.migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if len(errs) != 0 {
		slog.Error("too few args", "err", errors.Join(errs...))
		fallDown()
	}
}

// pgxURL switches a postgres url to the pgx/v5 migrate driver scheme.
func pgxURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

func newMigrate(f flags) *migrate.Migrate {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", f.migrationsPath),
		pgxURL(f.dsn),
	)
	if err != nil {
		slog.Error("failed to open migrations", "err", err)
		fallDown()
	}
	m.Log = NewMigrationLogger()
	return m
}

func makeMigrations(f flags) {
	m := newMigrate(f)
	defer closeMigrate(m)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migrations applied")
}

func rollback(f flags) {
	m := newMigrate(f)
	defer closeMigrate(m)

	if err := m.Steps(-1); err != nil {
		slog.Error("failed to roll back", "err", err)
		fallDown()
	}
	m.Log.Printf("last migration rolled back")
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		slog.Error("failed to close migrate", "err", err)
	}
}

func fallDown() {
	os.Exit(2)
}
