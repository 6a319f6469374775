package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/hearthledger/hearth/internal/normalize"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Hearth"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"hearth"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// Empty secret disables bearer token checks.
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Recognition struct {
		APIKey  string        `envconfig:"GEMINI_API_KEY"`
		Model   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
		Timeout time.Duration `envconfig:"RECOGNITION_TIMEOUT" default:"90s"`
	}

	Import struct {
		YearPolicy string        `envconfig:"IMPORT_YEAR_POLICY" default:"current"`
		ItemDelay  time.Duration `envconfig:"IMPORT_ITEM_DELAY" default:"500ms"`
	}

	Client struct {
		BackendURL string `envconfig:"BACKEND_URL" default:"http://localhost:8080"`
		Token      string `envconfig:"BACKEND_TOKEN"`
		HandlePath string `envconfig:"HANDLE_PATH" default:".hearth/handles.json"`
		UserID     string `envconfig:"CLIENT_USER_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// YearPolicy returns the configured stale-year handling for imported dates.
func (c *Config) YearPolicy() normalize.YearPolicy {
	return normalize.YearPolicy(c.Import.YearPolicy)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.YearPolicy() {
	case normalize.YearPolicyCurrent, normalize.YearPolicyKeep:
	default:
		return nil, fmt.Errorf("invalid IMPORT_YEAR_POLICY %q: want %q or %q",
			cfg.Import.YearPolicy, normalize.YearPolicyCurrent, normalize.YearPolicyKeep)
	}

	return &cfg, nil
}
