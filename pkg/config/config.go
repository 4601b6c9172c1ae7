package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jcallaghan/roster-engine-go/pkg/roster"
)

// Config is the process configuration, parsed from the environment. A .env
// file loaded by the entrypoint feeds the same variables during local runs.
type Config struct {
	Port    string `env:"PORT" envDefault:"8000"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	// Postgres when DATABASE_URL is set, embedded SQLite otherwise
	DatabaseURL string `env:"DATABASE_URL"`
	DataPath    string `env:"DATA_PATH" envDefault:"roster.db"`

	JWTSecret       string `env:"JWT_SECRET"`
	APIMasterSecret string `env:"API_MASTER_SECRET"`
	AdminUsername   string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword   string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	// Engine defaults; requests may override them per run
	WeekendUplift         float64       `env:"WEEKEND_UPLIFT" envDefault:"1.35"`
	MinRestHours          float64       `env:"MIN_REST_HOURS" envDefault:"10"`
	OvertimeSlackHours    float64       `env:"OVERTIME_SLACK_HOURS" envDefault:"2"`
	SolverBudget          time.Duration `env:"SOLVER_BUDGET" envDefault:"10s"`
	ResolverMaxIterations int           `env:"RESOLVER_MAX_ITERATIONS" envDefault:"20"`
}

// Load parses the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Engine translates the process configuration into an engine config,
// keeping the stock objective weights
func (c *Config) Engine() roster.Config {
	cfg := roster.DefaultConfig()
	cfg.WeekendUplift = c.WeekendUplift
	cfg.MinRestHours = c.MinRestHours
	cfg.OvertimeSlackHours = c.OvertimeSlackHours
	cfg.SolverBudget = c.SolverBudget
	cfg.ResolverMaxIterations = c.ResolverMaxIterations
	return cfg
}
