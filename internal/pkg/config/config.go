package config

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/sethvargo/go-envconfig"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	StoreDriver string `env:"STORE_DRIVER, default=mongo" validate:"oneof=mongo memory"`
	BcryptCost  int    `env:"BCRYPT_COST,  default=10"    validate:"min=4,max=31"`

	Mongo MongoConfig
	Redis RedisConfig
	Roles RolesConfig
	Seed  SeedConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=mediation_gateway"`
}

type RedisConfig struct {
	Enabled bool   `env:"REDIS_ENABLED, default=false"`
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
}

type RolesConfig struct {
	// StrictReferences makes the resolver verify identifier-shaped role
	// references against the store.
	StrictReferences bool   `env:"STRICT_ROLE_REFERENCES, default=false"`
	DeletePolicy     string `env:"ROLE_DELETE_POLICY,     default=allow" validate:"oneof=allow restrict"`
}

type SeedConfig struct {
	OnStart        bool   `env:"SEED_ON_START,         default=false"`
	AdminEmail     string `env:"SEED_ADMIN_EMAIL,      default=admin@example.com" validate:"notblank"`
	AdminPassword  string `env:"SEED_ADMIN_PASSWORD,   default=admin123"          validate:"notblank,min=6,maxbytes=72"`
	AdminFirstName string `env:"SEED_ADMIN_FIRST_NAME, default=Admin"             validate:"notblank"`
	AdminLastName  string `env:"SEED_ADMIN_LAST_NAME,  default=User"              validate:"notblank"`
}

// IsDevelopment reports whether the process runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("maxbytes", maxBytes)
	if err := v.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// maxBytes bounds the encoded length; bcrypt rejects secrets over 72 bytes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}
