package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/vault/api"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/architeacher/persons/services/svc-persons/internal/ports"
)

const DefaultEnvFile = ".env"

var ErrSecretsStorageDisabled = errors.New("secret storage is not enabled")

// Init loads the given env files, skipping missing ones, and then processes
// the environment. Variables already set win over file values.
func Init(envFiles ...string) (*ServiceConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}

	if err := LoadEnv(envFiles); err != nil {
		return nil, err
	}

	cfg := &ServiceConfig{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	if len(ServiceVersion) != 0 {
		cfg.App.ServiceVersion = ServiceVersion
	}

	if len(CommitSHA) != 0 {
		cfg.App.CommitSHA = CommitSHA
	}

	return cfg, nil
}

func LoadEnv(envFiles []string) error {
	existing := make([]string, 0, len(envFiles))

	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading env files %v: %w", existing, err)
	}

	return nil
}

// Loader overlays secrets stored in Vault under apps/data/<mount> onto the
// configuration.
type Loader struct {
	cfg         *ServiceConfig
	secretsRepo ports.SecretsRepository
	retryDelay  time.Duration
}

func NewLoader(cfg *ServiceConfig, secretsRepo ports.SecretsRepository) *Loader {
	return &Loader{
		cfg:         cfg,
		secretsRepo: secretsRepo,
		retryDelay:  time.Second,
	}
}

func (l *Loader) Load(ctx context.Context) error {
	if !l.cfg.SecretsStorage.Enabled {
		return ErrSecretsStorageDisabled
	}

	if err := l.authenticateVault(ctx, l.cfg.SecretsStorage); err != nil {
		return fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	data, err := l.loadSecrets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	for key, value := range data {
		if strValue, ok := value.(string); ok && strValue != "" {
			l.applySecret(key, strValue)
		}
	}

	return nil
}

// DumpConfig writes the configuration as JSON; secret fields are excluded by
// their json tags.
func (l *Loader) DumpConfig(w io.Writer) error {
	configJSON, err := json.MarshalIndent(l.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\n", configJSON)

	return err
}

func (l *Loader) authenticateVault(ctx context.Context, config SecretsStorage) error {
	switch strings.ToLower(config.AuthMethod) {
	case "token":
		if config.Token == "" {
			return fmt.Errorf("token is required for token auth method")
		}
		l.secretsRepo.SetToken(config.Token)

		return nil

	case "approle":
		if config.RoleID == "" || config.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth method")
		}

		resp, err := l.secretsRepo.WriteWithContext(ctx, "auth/approle/login", map[string]any{
			"role_id":   config.RoleID,
			"secret_id": config.SecretID,
		})
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("no auth info returned from Vault")
		}

		l.secretsRepo.SetToken(resp.Auth.ClientToken)

		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", config.AuthMethod)
	}
}

func (l *Loader) loadSecrets(ctx context.Context) (map[string]any, error) {
	path := fmt.Sprintf("apps/data/%s", l.cfg.SecretsStorage.MountPath)

	ctx, cancel := context.WithTimeout(ctx, l.cfg.SecretsStorage.Timeout)
	defer cancel()

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = l.retryDelay

	secret, err := backoff.Retry(
		ctx,
		func() (*api.Secret, error) {
			return l.secretsRepo.GetSecrets(ctx, path)
		},
		backoff.WithMaxTries(l.cfg.SecretsStorage.MaxRetries+1),
		backoff.WithBackOff(expBackoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read from path %s after %d retries: %w", path, l.cfg.SecretsStorage.MaxRetries, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, nil
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid secret format at path %s, missing 'data' key", path)
	}

	return data, nil
}

func (l *Loader) applySecret(key, value string) {
	switch key {
	case "POSTGRES_PASSWORD":
		l.cfg.Database.Password = value
	case "POSTGRES_USERNAME":
		l.cfg.Database.Username = value
	case "CACHE_PASSWORD":
		l.cfg.Cache.Password = value
	}
}
