package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/notes/pkg/jwtx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"

	AlgorithmHS256 = "HS256"
	AlgorithmEdDSA = "EdDSA"
)

type Config struct {
	Env                 string        `envconfig:"ENV" default:"dev"`
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat           string        `envconfig:"LOG_FORMAT" default:"json"`
	Port                int           `envconfig:"PORT" default:"8080"`
	ShutdownGracePeriod time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`

	StoreDriver       string `envconfig:"NOTES_STORE_DRIVER" default:"sqlite"`
	DatabaseFile      string `envconfig:"NOTES_DATABASE_FILE" default:"notes.db"`
	MongoURI          string `envconfig:"NOTES_MONGO_URI"`
	MongoDatabase     string `envconfig:"NOTES_MONGO_DATABASE" default:"notes"`
	MongoTransactions bool   `envconfig:"NOTES_MONGO_TRANSACTIONS" default:"true"` // needs a replica set

	Issuer         string        `envconfig:"NOTES_ISSUER" default:"bartab-notes"`
	Algorithm      string        `envconfig:"NOTES_JWT_ALGORITHM" default:"HS256"`
	JWTSecret      string        `envconfig:"NOTES_JWT_SECRET"`
	SigningKeyFile string        `envconfig:"NOTES_SIGNING_KEY_FILE"`
	TokenTTL       time.Duration `envconfig:"NOTES_TOKEN_TTL" default:"24h"`
	PepperFile     string        `envconfig:"NOTES_PEPPER_FILE" default:"pepper"`

	CORSOrigins []string `envconfig:"NOTES_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	SeedDemo    bool     `envconfig:"NOTES_SEED_DEMO" default:"false"`
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory if there is one. Variables already set win over .env.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsDev() bool { return strings.EqualFold(c.Env, "dev") }

func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverSQLite:
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("NOTES_MONGO_URI is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTES_STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.Algorithm {
	case AlgorithmHS256:
		if c.JWTSecret == "" && !c.IsDev() {
			errs = append(errs, errors.New("NOTES_JWT_SECRET is required outside dev"))
		}
		if c.JWTSecret != "" && len(c.JWTSecret) < jwtx.MinHS256SecretSize {
			errs = append(errs, fmt.Errorf("NOTES_JWT_SECRET must be at least %d bytes", jwtx.MinHS256SecretSize))
		}
	case AlgorithmEdDSA:
		if c.SigningKeyFile == "" && !c.IsDev() {
			errs = append(errs, errors.New("NOTES_SIGNING_KEY_FILE is required outside dev"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTES_JWT_ALGORITHM %q", c.Algorithm))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("NOTES_TOKEN_TTL must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}

	return errors.Join(errs...)
}
