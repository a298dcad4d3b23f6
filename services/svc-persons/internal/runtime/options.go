package runtime

import (
	"io"
	"os"

	"github.com/architeacher/persons/services/svc-persons/internal/config"
)

type ServiceOption func(*ServiceCtx)

func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(s *ServiceCtx) {
		s.shutdownChannel = ch
	}
}

// WithConfigDump replaces the SIGUSR1 channel that triggers a configuration
// dump and the writer it goes to.
func WithConfigDump(ch chan os.Signal, w io.Writer) ServiceOption {
	return func(s *ServiceCtx) {
		s.configDumpChannel = ch
		s.configDumpOutput = w
	}
}

func WithWaitingForServer() ServiceOption {
	return func(s *ServiceCtx) {
		s.serverReady = make(chan struct{})
	}
}

// WithEnvFiles names dotenv files read before the environment.
func WithEnvFiles(files ...string) ServiceOption {
	return func(s *ServiceCtx) {
		s.envFiles = append(s.envFiles, files...)
	}
}

// WithServiceConfig skips configuration loading and uses cfg as is.
func WithServiceConfig(cfg *config.ServiceConfig) ServiceOption {
	return func(s *ServiceCtx) {
		s.config = cfg
	}
}

// WithDependencyOptions replaces the default dependency wiring.
func WithDependencyOptions(opts ...DependencyOption) ServiceOption {
	return func(s *ServiceCtx) {
		s.depOptions = opts
	}
}
