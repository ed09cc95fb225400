// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package settings

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the identity service configuration file.
type Config struct {
	Log      LogConfig               `koanf:"log" json:"log,omitempty"`
	Database DatabaseConfig          `koanf:"database" json:"database,omitempty"`
	Redis    RedisConfig             `koanf:"redis" json:"redis,omitempty"`
	Token    TokenConfig             `koanf:"token" json:"token,omitempty"`
	Metrics  MetricsConfig           `koanf:"metrics" json:"metrics,omitempty"`
	Users    UserSettings            `koanf:"users" json:"users,omitempty"`
	Roles    RoleSettings            `koanf:"roles" json:"roles,omitempty"`
	Tenants  map[string]TenantConfig `koanf:"tenants" json:"tenants,omitempty" jsonschema:"description=Per-tenant overrides of users and roles"`
}

// LogConfig selects the log output.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// DatabaseConfig locates the PostgreSQL event store.
type DatabaseConfig struct {
	URL string `koanf:"url" json:"url,omitempty" env:"IDENTITY_DATABASE_URL"`
}

// RedisConfig locates the Redis token blacklist.
type RedisConfig struct {
	URL string `koanf:"url" json:"url,omitempty" env:"IDENTITY_REDIS_URL"`
}

// TokenConfig configures token issuance and revocation.
type TokenConfig struct {
	Secret        string `koanf:"secret" json:"secret,omitempty" env:"IDENTITY_TOKEN_SECRET"`
	Issuer        string `koanf:"issuer" json:"issuer,omitempty"`
	Audience      string `koanf:"audience" json:"audience,omitempty"`
	Blacklist     string `koanf:"blacklist" json:"blacklist,omitempty" jsonschema:"enum=memory,enum=postgres,enum=redis"`
	PurgeInterval string `koanf:"purge_interval" json:"purge_interval,omitempty" jsonschema:"description=Go duration between blacklist purges,example=1h"`
}

// MetricsConfig configures the observability server.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty"`
}

// TenantConfig overrides the default settings for one tenant.
// A nil section keeps the defaults.
type TenantConfig struct {
	Users *UserSettings `koanf:"users" json:"users,omitempty"`
	Roles *RoleSettings `koanf:"roles" json:"roles,omitempty"`
}

// Default returns the configuration used for keys absent from every source.
func Default() Config {
	return Config{
		Log:     LogConfig{Format: "json", Level: "info"},
		Token:   TokenConfig{Blacklist: "postgres", PurgeInterval: "1h"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9101"},
		Users:   DefaultUserSettings(),
		Roles:   DefaultRoleSettings(),
	}
}

// PurgeEvery parses Token.PurgeInterval.
func (c Config) PurgeEvery() (time.Duration, error) {
	d, err := time.ParseDuration(c.Token.PurgeInterval)
	if err != nil {
		return 0, oops.Code("CONFIG_INVALID").With("purge_interval", c.Token.PurgeInterval).Wrap(err)
	}
	if d <= 0 {
		return 0, oops.Code("CONFIG_INVALID").With("purge_interval", c.Token.PurgeInterval).Errorf("purge interval must be positive")
	}
	return d, nil
}

// Load builds the configuration from, in increasing precedence: defaults, the
// YAML file at path (optional, validated against the config schema), changed
// command-line flags and IDENTITY_* environment variables.
//
// Flags are matched to keys by name, so a flag "database.url" sets database.url.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		fp := file.Provider(path)
		data, err := fp.ReadBytes()
		if err != nil {
			return Config{}, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateSchema(data); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
		if err := k.Load(fp, yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_READ_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}
