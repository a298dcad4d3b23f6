// Package testserver runs the persons service against a PostgreSQL container
// for integration testing.
package testserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/architeacher/persons/services/svc-persons/internal/config"
	"github.com/architeacher/persons/services/svc-persons/internal/runtime"
)

const (
	postgresImage    = "postgres:18-alpine"
	postgresDatabase = "persons_test"
	postgresUsername = "test"
	postgresPassword = "test"
)

// TestServer serves the full HTTP surface with a real database and an
// in-process KeyDB stand-in.
type TestServer struct {
	Config        *config.ServiceConfig
	DBPool        *pgxpool.Pool
	Container     *postgres.PostgresContainer
	Cache         *miniredis.Miniredis
	service       *runtime.ServiceCtx
	termination   chan os.Signal
	stopped       chan error
	containerCtx  context.Context
	containerStop context.CancelFunc
}

// New starts PostgreSQL, migrates it through the service's auto-migrate
// path and serves HTTP on a loopback port.
func New(ctx context.Context) (*TestServer, error) {
	containerCtx, containerStop := context.WithTimeout(ctx, 5*time.Minute)

	s := &TestServer{
		termination:   make(chan os.Signal, 1),
		stopped:       make(chan error, 1),
		containerCtx:  containerCtx,
		containerStop: containerStop,
	}

	container, err := postgres.Run(containerCtx,
		postgresImage,
		postgres.WithDatabase(postgresDatabase),
		postgres.WithUsername(postgresUsername),
		postgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		containerStop()

		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	s.Container = container

	if err := s.start(); err != nil {
		s.Close()

		return nil, err
	}

	return s, nil
}

func (s *TestServer) start() error {
	host, err := s.Container.Host(s.containerCtx)
	if err != nil {
		return fmt.Errorf("resolving postgres host: %w", err)
	}

	port, err := s.Container.MappedPort(s.containerCtx, "5432/tcp")
	if err != nil {
		return fmt.Errorf("resolving postgres port: %w", err)
	}

	s.Cache, err = miniredis.Run()
	if err != nil {
		return fmt.Errorf("starting cache: %w", err)
	}

	cfg, err := config.Init(filepath.Join(os.TempDir(), "svc-persons-testserver.env"))
	if err != nil {
		return err
	}

	cfg.HTTPServer.Host = "127.0.0.1"
	cfg.HTTPServer.Port = 0
	cfg.Database.Driver = config.DriverPostgres
	cfg.Database.Host = host
	cfg.Database.Port = uint(port.Int())
	cfg.Database.Database = postgresDatabase
	cfg.Database.Username = postgresUsername
	cfg.Database.Password = postgresPassword
	cfg.Database.SSLMode = "disable"
	cfg.Database.AutoMigrate = true
	cfg.Cache.Enabled = true
	cfg.Cache.Address = s.Cache.Addr()
	cfg.ThrottledRateLimiting.Enabled = false
	cfg.Telemetry.Enabled = false
	cfg.Logging.Level = "error"
	s.Config = cfg

	s.DBPool, err = pgxpool.New(s.containerCtx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("creating database pool: %w", err)
	}

	s.service = runtime.New(
		runtime.WithServiceConfig(cfg),
		runtime.WithServiceTermination(s.termination),
		runtime.WithWaitingForServer(),
	)

	go func() {
		s.stopped <- s.service.Run()
	}()

	ready := make(chan struct{})
	go func() {
		s.service.WaitForServer()
		close(ready)
	}()

	select {
	case <-ready:
		return nil
	case err := <-s.stopped:
		s.service = nil

		return errors.Join(errors.New("service exited before serving"), err)
	}
}

// URL returns the base URL of the HTTP server.
func (s *TestServer) URL() string {
	return "http://" + s.service.Addr()
}

// TruncatePersons removes every person and resets the id sequence. Cached
// counts are flushed with it.
func (s *TestServer) TruncatePersons(ctx context.Context) error {
	s.Cache.FlushAll()

	_, err := s.DBPool.Exec(ctx, "TRUNCATE TABLE pessoa RESTART IDENTITY")

	return err
}

// Close stops the service and releases the containers.
func (s *TestServer) Close() {
	if s.service != nil {
		s.termination <- syscall.SIGTERM
		<-s.stopped
	}

	if s.DBPool != nil {
		s.DBPool.Close()
	}

	if s.Cache != nil {
		s.Cache.Close()
	}

	if s.Container != nil {
		_ = s.Container.Terminate(s.containerCtx)
	}

	if s.containerStop != nil {
		s.containerStop()
	}
}
