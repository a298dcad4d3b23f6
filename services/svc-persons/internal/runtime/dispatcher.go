package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/architeacher/persons/services/svc-persons/internal/config"
)

type ServiceCtx struct {
	deps            *dependencies
	config          *config.ServiceConfig
	envFiles        []string
	depOptions      []DependencyOption
	shutdownChannel chan os.Signal
	// configDumpChannel receives SIGUSR1; each signal writes the current
	// configuration, secrets excluded, to configDumpOutput.
	configDumpChannel chan os.Signal
	configDumpOutput  io.Writer
	serverCtx         context.Context
	serverStopFunc    context.CancelFunc
	serverReady       chan struct{}
	serveErrors       chan error
	listener          net.Listener
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel:   make(chan os.Signal, 1),
		configDumpChannel: make(chan os.Signal, 1),
		configDumpOutput:  os.Stdout,
		serveErrors:       make(chan error, 1),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run builds the service, serves HTTP and blocks until a termination signal
// arrives or the server fails.
func (c *ServiceCtx) Run() error {
	if err := c.build(); err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	if err := c.startService(); err != nil {
		c.shutdown()

		return err
	}

	c.shutdownHook()

	go c.watchConfigDumps()

	var serveErr error

	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.serverCtx.Done():
	case serveErr = <-c.serveErrors:
	case <-c.shutdownChannel:
	}

	signal.Stop(c.shutdownChannel)
	signal.Stop(c.configDumpChannel)
	c.shutdown()

	return serveErr
}

// Addr reports the address the HTTP server listens on, once it is running.
func (c *ServiceCtx) Addr() string {
	if c.listener == nil {
		return ""
	}

	return c.listener.Addr().String()
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(c.serverCtx, c.config, c.envFiles, c.depOptions...)
	if err != nil {
		c.serverStopFunc()

		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

func (c *ServiceCtx) startService() error {
	server := c.deps.infra.httpServer

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	c.listener = listener
	c.deps.onCleanup("http server", server.Shutdown)

	c.deps.infra.logger.Info().
		Str("address", listener.Addr().String()).
		Str("driver", c.deps.config.Database.Driver).
		Msg("starting the http server")

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.serveErrors <- fmt.Errorf("http server error: %w", err)
		}
	}()

	if c.serverReady != nil {
		close(c.serverReady)
	}

	return nil
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
	signal.Notify(c.configDumpChannel, syscall.SIGUSR1)
}

func (c *ServiceCtx) watchConfigDumps() {
	for {
		select {
		case <-c.serverCtx.Done():
			return
		case <-c.configDumpChannel:
			if c.deps.configLoader == nil {
				continue
			}

			if err := c.deps.configLoader.DumpConfig(c.configDumpOutput); err != nil {
				c.deps.infra.logger.Error().Err(err).Msg("failed to dump configuration")
			}
		}
	}
}

func (c *ServiceCtx) shutdown() {
	c.deps.infra.logger.Info().Msg("shutting down service...")

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout())
	defer cancel()

	c.cleanup(shutdownCtx)

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		c.deps.infra.logger.Error().Msg("graceful shutdown timed out")

		return
	}

	c.deps.infra.logger.Info().Msg("service shutdown complete")
}

func (c *ServiceCtx) shutdownTimeout() time.Duration {
	if timeout := c.deps.config.HTTPServer.ShutdownTimeout; timeout > 0 {
		return timeout
	}

	return 30 * time.Second
}

// WaitForServer blocks until the http server is running.
// If you want to be notified when the server is running,
// make sure you instantiate your server with WithWaitingForServer.
//
// Example:
//
//	srv := runtime.New(WithWaitingForServer())
//	go func() {
//		_ = srv.Run()
//	}()
//
//	srv.WaitForServer()
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

func (c *ServiceCtx) cleanup(shutdownCtx context.Context) {
	c.deps.infra.logger.Info().Msg("cleaning up resources...")

	for i := len(c.deps.cleanupFuncs) - 1; i >= 0; i-- {
		cleanup := c.deps.cleanupFuncs[i]

		if err := cleanup.fn(shutdownCtx); err != nil {
			c.deps.infra.logger.Error().
				Err(err).
				Str("resource", cleanup.resource).
				Msg("failed to shutdown the resource gracefully")
		}
	}

	c.deps.infra.logger.Info().Msg("cleanup completed")
}
