// Package config provides configuration management for the derby-sim application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Simulation   SimulationConfig   `mapstructure:"simulation"`
	Allocation   AllocationConfig   `mapstructure:"allocation"`
	Entry        EntryConfig        `mapstructure:"entry"`
	Season       SeasonConfig       `mapstructure:"season" validate:"required"`
	RosterSource RosterSourceConfig `mapstructure:"roster_source"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Health       HealthConfig       `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig selects and configures the storage backend
type DatabaseConfig struct {
	Driver             string `mapstructure:"driver" validate:"required,driver"`
	Path               string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	Host               string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Driver postgres"`
	User               string `mapstructure:"user" validate:"required_if=Driver postgres"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
	AWSRegion          string `mapstructure:"aws_region"`
	AWSSecretName      string `mapstructure:"aws_secret_name"`
}

// SimulationConfig tunes the race engine. Zero values keep the engine defaults.
type SimulationConfig struct {
	FrameRate           int     `mapstructure:"frame_rate" validate:"omitempty,gt=0,lte=100"`
	SafetyCutoffSeconds float64 `mapstructure:"safety_cutoff_seconds" validate:"omitempty,gt=0"`
	RacePace            float64 `mapstructure:"race_pace" validate:"omitempty,gt=0"`
	DraftPhaseEnd       float64 `mapstructure:"draft_phase_end" validate:"omitempty,gt=0,lt=1"`
	SprintBonusCap      float64 `mapstructure:"sprint_bonus_cap" validate:"omitempty,gt=0"`
	StaminaDrainRate    float64 `mapstructure:"stamina_drain_rate" validate:"omitempty,gt=0"`
	DraftingDrainFactor float64 `mapstructure:"drafting_drain_factor" validate:"omitempty,gt=0,lte=1"`
	Seed                int64   `mapstructure:"seed"`
}

// AllocationConfig tunes matchmaking. Zero values keep the defaults.
type AllocationConfig struct {
	Capacity      int `mapstructure:"capacity" validate:"omitempty,gt=1"`
	MinCondition  int `mapstructure:"min_condition" validate:"omitempty,gte=0,lte=100"`
	FloorG1       int `mapstructure:"floor_g1" validate:"omitempty,gte=0"`
	FloorG2       int `mapstructure:"floor_g2" validate:"omitempty,gte=0"`
	FloorOther    int `mapstructure:"floor_other" validate:"omitempty,gte=0"`
	Workers       int `mapstructure:"workers" validate:"omitempty,gt=0,lte=64"`
	MinFieldToRun int `mapstructure:"min_field_to_run" validate:"omitempty,gte=2"`
}

// EntryConfig tunes the entry policy thresholds. Zero values keep the defaults.
type EntryConfig struct {
	ConditionFloorG1 int   `mapstructure:"condition_floor_g1" validate:"omitempty,gte=0,lte=100"`
	ConditionFloor   int   `mapstructure:"condition_floor" validate:"omitempty,gte=0,lte=100"`
	RestWeeksElite   int   `mapstructure:"rest_weeks_elite" validate:"omitempty,gte=0"`
	RestWeeks        int   `mapstructure:"rest_weeks" validate:"omitempty,gte=0"`
	EliteSoftCap     int   `mapstructure:"elite_soft_cap" validate:"omitempty,gt=0"`
	EliteHardCap     int   `mapstructure:"elite_hard_cap" validate:"omitempty,gt=0"`
	FinaleHardCap    int   `mapstructure:"finale_hard_cap" validate:"omitempty,gt=0"`
	StandardCap      int   `mapstructure:"standard_cap" validate:"omitempty,gt=0"`
	EliteStatSum     int   `mapstructure:"elite_stat_sum" validate:"omitempty,gt=0"`
	EliteEarnings    int64 `mapstructure:"elite_earnings" validate:"omitempty,gt=0"`
}

// SeasonConfig configures season progression
type SeasonConfig struct {
	StartYear        int     `mapstructure:"start_year" validate:"required,gte=1"`
	CalendarPath     string  `mapstructure:"calendar_path"`
	RosterSize       int     `mapstructure:"roster_size" validate:"omitempty,gte=2,lte=2000"`
	InjuryBaseChance float64 `mapstructure:"injury_base_chance" validate:"omitempty,gte=0,lte=1"`
	TrainingEnabled  bool    `mapstructure:"training_enabled"`
	RetirementAge    int     `mapstructure:"retirement_age" validate:"omitempty,gte=3"`
}

// RosterSourceConfig configures where imported horses come from
type RosterSourceConfig struct {
	Type              string  `mapstructure:"type" validate:"omitempty,oneof=file http"`
	Path              string  `mapstructure:"path" validate:"required_if=Type file"`
	URL               string  `mapstructure:"url" validate:"required_if=Type http,omitempty,url"`
	APIKey            string  `mapstructure:"api_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"omitempty,gt=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"omitempty,gte=0"`
}

// SchedulerConfig configures automatic week advancement
type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	AdvanceSpec string `mapstructure:"advance_spec" validate:"omitempty,cronspec"`
	WeeksPerRun int    `mapstructure:"weeks_per_run" validate:"omitempty,gt=0,lte=52"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// HealthConfig configures the health server
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN returns the PostgreSQL connection string for this database section
func (d *DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := d.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		port,
		d.Name,
		sslMode,
	)
}
