package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".cart"
	envPrefix  = "CART"

	KeyEndpoint           = "graphql.endpoint"
	KeyTimeout            = "graphql.timeout"
	KeyBreakerMaxFailures = "graphql.breaker.max_failures"
	KeyBreakerOpenTimeout = "graphql.breaker.open_timeout"
	KeyStorageBackend     = "storage.backend"
	KeyStoragePath        = "storage.path"
	KeyStorageDir         = "storage.dir"
	KeyLogLevel           = "log.level"
	KeyTraceStdout        = "trace.stdout"
	KeyTokenBackend       = "auth.token_backend"
	KeyPassPrefix         = "auth.pass_prefix"

	BackendTOML = "toml"
	BackendDir  = "dir"

	TokenBackendStore = "store"
	TokenBackendPass  = "pass"
)

type Config struct {
	GraphQL GraphQL
	Storage Storage
	Log     Log
	Trace   Trace
	Auth    Auth

	// Viper is the loaded configuration, handed to adapters that read their own keys.
	Viper *viper.Viper
}

type GraphQL struct {
	Endpoint           string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

type Storage struct {
	Backend string
	Path    string
	Dir     string
}

type Log struct {
	Level string
}

type Trace struct {
	Stdout bool
}

// Auth selects where the signin token lives. With the pass backend the session store
// still serves as fallback when pass is missing or fails.
type Auth struct {
	TokenBackend string
	PassPrefix   string
}

// Load reads ~/.cart/config.toml when present and applies CART_* environment overrides,
// e.g. CART_GRAPHQL_ENDPOINT for graphql.endpoint.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	root := filepath.Join(homeDir, configDir)

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(root)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyEndpoint, "http://localhost:8080/graphql")
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyBreakerMaxFailures, 5)
	v.SetDefault(KeyBreakerOpenTimeout, 30*time.Second)
	v.SetDefault(KeyStorageBackend, BackendTOML)
	v.SetDefault(KeyStoragePath, filepath.Join(root, "session.toml"))
	v.SetDefault(KeyStorageDir, filepath.Join(root, "store"))
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyTraceStdout, false)
	v.SetDefault(KeyTokenBackend, TokenBackendStore)
	v.SetDefault(KeyPassPrefix, "cart")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		GraphQL: GraphQL{
			Endpoint:           strings.TrimSpace(v.GetString(KeyEndpoint)),
			Timeout:            v.GetDuration(KeyTimeout),
			BreakerMaxFailures: v.GetUint32(KeyBreakerMaxFailures),
			BreakerOpenTimeout: v.GetDuration(KeyBreakerOpenTimeout),
		},
		Storage: Storage{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString(KeyStorageBackend))),
			Path:    v.GetString(KeyStoragePath),
			Dir:     v.GetString(KeyStorageDir),
		},
		Log:   Log{Level: v.GetString(KeyLogLevel)},
		Trace: Trace{Stdout: v.GetBool(KeyTraceStdout)},
		Auth: Auth{
			TokenBackend: strings.ToLower(strings.TrimSpace(v.GetString(KeyTokenBackend))),
			PassPrefix:   strings.TrimSpace(v.GetString(KeyPassPrefix)),
		},
		Viper: v,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GraphQL.Endpoint == "" {
		return errors.New("graphql.endpoint is empty")
	}
	switch c.Storage.Backend {
	case BackendTOML, BackendDir:
	default:
		return fmt.Errorf("unknown storage.backend %q (want %s or %s)", c.Storage.Backend, BackendTOML, BackendDir)
	}
	switch c.Auth.TokenBackend {
	case TokenBackendStore, TokenBackendPass:
	default:
		return fmt.Errorf("unknown auth.token_backend %q (want %s or %s)", c.Auth.TokenBackend, TokenBackendStore, TokenBackendPass)
	}
	return nil
}
