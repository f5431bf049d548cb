package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/vilanovax/wibecur-sub000/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Rotation   RotationConfig   `mapstructure:"rotation"`
	Ranking    RankingConfig    `mapstructure:"ranking"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Report     ReportConfig     `mapstructure:"report"`
	Server     ServerConfig     `mapstructure:"server"`
	Export     ExportConfig     `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchedulingConfig governs slot validation and write serialisation.
type SchedulingConfig struct {
	// ConflictLockKey is the Postgres advisory lock key taken around the
	// conflict check + insert so concurrent proposals cannot both pass.
	ConflictLockKey int64 `mapstructure:"conflict_lock_key"`
}

// RotationConfig tunes category rotation fairness.
type RotationConfig struct {
	Window   time.Duration `mapstructure:"window"`
	Modifier float64       `mapstructure:"modifier"`
}

// RankingConfig carries the composite score weights and filters.
type RankingConfig struct {
	TrendingWeight  float64       `mapstructure:"trending_weight"`
	VelocityWeight  float64       `mapstructure:"velocity_weight"`
	RecencyWeight   float64       `mapstructure:"recency_weight"`
	RotationWeight  float64       `mapstructure:"rotation_weight"`
	CoolDown        time.Duration `mapstructure:"cool_down"`
	RecencyCapDays  float64       `mapstructure:"recency_cap_days"`
	ReasonThreshold float64       `mapstructure:"reason_threshold"`
	MaxReasons      int           `mapstructure:"max_reasons"`
}

// AnalysisConfig holds the lift and CTR threshold tables.
type AnalysisConfig struct {
	StrongCTR    float64 `mapstructure:"strong_ctr"`
	ModerateCTR  float64 `mapstructure:"moderate_ctr"`
	HighLift     float64 `mapstructure:"high_lift"`
	ModerateLift float64 `mapstructure:"moderate_lift"`
	NearZeroLift float64 `mapstructure:"near_zero_lift"`
}

// ReportConfig weighs category impact scoring.
type ReportConfig struct {
	CTRWeight       float64 `mapstructure:"ctr_weight"`
	SaveLiftWeight  float64 `mapstructure:"save_lift_weight"`
	ScoreLiftWeight float64 `mapstructure:"score_lift_weight"`
	CountWeight     float64 `mapstructure:"count_weight"`
}

// ServerConfig describes the HTTP API listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WIBECUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "wibecur")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("scheduling.conflict_lock_key", int64(0x66536c74))

	v.SetDefault("rotation.window", "672h") // 4 weeks
	v.SetDefault("rotation.modifier", 1.0)

	v.SetDefault("ranking.trending_weight", 0.35)
	v.SetDefault("ranking.velocity_weight", 0.30)
	v.SetDefault("ranking.recency_weight", 0.20)
	v.SetDefault("ranking.rotation_weight", 0.15)
	v.SetDefault("ranking.cool_down", "672h") // 4 weeks
	v.SetDefault("ranking.recency_cap_days", 56.0)
	v.SetDefault("ranking.reason_threshold", 0.10)
	v.SetDefault("ranking.max_reasons", 4)

	v.SetDefault("analysis.strong_ctr", 0.18)
	v.SetDefault("analysis.moderate_ctr", 0.05)
	v.SetDefault("analysis.high_lift", 200.0)
	v.SetDefault("analysis.moderate_lift", 50.0)
	v.SetDefault("analysis.near_zero_lift", 5.0)

	v.SetDefault("report.ctr_weight", 100.0)
	v.SetDefault("report.save_lift_weight", 0.5)
	v.SetDefault("report.score_lift_weight", 0.3)
	v.SetDefault("report.count_weight", 2.0)

	v.SetDefault("server.addr", ":8085")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("export.max_data_points", 100000)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Rotation.Window <= 0 {
		return fmt.Errorf("rotation.window must be greater than zero")
	}
	if c.Rotation.Modifier < 0 {
		return fmt.Errorf("rotation.modifier cannot be negative")
	}
	if c.Ranking.CoolDown < 0 {
		return fmt.Errorf("ranking.cool_down cannot be negative")
	}
	if c.Ranking.RecencyCapDays <= 0 {
		return fmt.Errorf("ranking.recency_cap_days must be greater than zero")
	}
	if c.Ranking.MaxReasons <= 0 {
		return fmt.Errorf("ranking.max_reasons must be greater than zero")
	}
	if c.Analysis.ModerateCTR > c.Analysis.StrongCTR {
		return fmt.Errorf("analysis.moderate_ctr cannot exceed analysis.strong_ctr")
	}
	if c.Analysis.ModerateLift > c.Analysis.HighLift {
		return fmt.Errorf("analysis.moderate_lift cannot exceed analysis.high_lift")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be greater than zero")
	}
	return nil
}
