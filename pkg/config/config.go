package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"CostCast/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Backend struct {
		Type         string        `yaml:"type"` // kafka or clickhouse
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		EventsTopic  string   `yaml:"events_topic"`
		LogsTopic    string   `yaml:"logs_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	AWSCost struct {
		Enabled      bool          `yaml:"enabled"`
		Region       string        `yaml:"region"`
		Account      string        `yaml:"account"`
		Granularity  string        `yaml:"granularity"` // DAILY or MONTHLY
		LookbackDays int           `yaml:"lookback_days"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"awscost"`
	Forecast struct {
		MinDataPoints int `yaml:"min_data_points"`
		SMA           struct {
			Window int `yaml:"window"`
		} `yaml:"sma"`
		ES struct {
			Alpha float64 `yaml:"alpha"`
		} `yaml:"es"`
		HW struct {
			Alpha           float64 `yaml:"alpha"`
			Beta            float64 `yaml:"beta"`
			Gamma           float64 `yaml:"gamma"`
			SeasonalPeriods int     `yaml:"seasonal_periods"`
		} `yaml:"hw"`
		Theta struct {
			Value float64 `yaml:"value"`
		} `yaml:"theta"`
		Ensemble   bool `yaml:"ensemble"`
		Milestones bool `yaml:"milestones"`
	} `yaml:"forecast"`
	Stats struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
		MaxRPS     float64       `yaml:"max_rps"`
		ARIMA      struct {
			Enabled bool   `yaml:"enabled"`
			Order   [3]int `yaml:"order"`
		} `yaml:"arima"`
		SARIMA struct {
			Enabled       bool   `yaml:"enabled"`
			Order         [3]int `yaml:"order"`
			SeasonalOrder [4]int `yaml:"seasonal_order"`
		} `yaml:"sarima"`
		Prophet struct {
			Enabled               bool    `yaml:"enabled"`
			YearlySeasonality     bool    `yaml:"yearly_seasonality"`
			WeeklySeasonality     bool    `yaml:"weekly_seasonality"`
			DailySeasonality      bool    `yaml:"daily_seasonality"`
			ChangepointPriorScale float64 `yaml:"changepoint_prior_scale"`
		} `yaml:"prophet"`
		NeuralProphet struct {
			Enabled bool `yaml:"enabled"`
			Epochs  int  `yaml:"epochs"`
		} `yaml:"neural_prophet"`
		Darts struct {
			Enabled bool   `yaml:"enabled"`
			Model   string `yaml:"model"`
		} `yaml:"darts"`
	} `yaml:"stats"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Jobs struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		ResultTTL  time.Duration `yaml:"result_ttl"`
	} `yaml:"jobs"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("STATS_SERVICE_URL"); v != "" {
		c.Stats.ServiceURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.AWSCost.Region = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Forecast.MinDataPoints <= 0 {
		c.Forecast.MinDataPoints = 10
	}
	if c.Forecast.SMA.Window <= 0 {
		c.Forecast.SMA.Window = 7
	}
	if c.Forecast.ES.Alpha <= 0 {
		c.Forecast.ES.Alpha = 0.5
	}
	if c.Forecast.HW.Alpha <= 0 {
		c.Forecast.HW.Alpha = 0.3
	}
	if c.Forecast.HW.Beta <= 0 {
		c.Forecast.HW.Beta = 0.1
	}
	if c.Forecast.HW.Gamma <= 0 {
		c.Forecast.HW.Gamma = 0.1
	}
	if c.Forecast.HW.SeasonalPeriods <= 0 {
		c.Forecast.HW.SeasonalPeriods = 12
	}
	if c.Forecast.Theta.Value <= 0 {
		c.Forecast.Theta.Value = 2
	}
	if c.Stats.ARIMA.Order == [3]int{} {
		c.Stats.ARIMA.Order = [3]int{1, 1, 1}
	}
	if c.Stats.SARIMA.Order == [3]int{} {
		c.Stats.SARIMA.Order = [3]int{1, 1, 1}
	}
	if c.Stats.SARIMA.SeasonalOrder == [4]int{} {
		c.Stats.SARIMA.SeasonalOrder = [4]int{1, 1, 1, 12}
	}
	if c.Stats.Timeout <= 0 {
		c.Stats.Timeout = 60 * time.Second
	}
	if c.AWSCost.LookbackDays <= 0 {
		c.AWSCost.LookbackDays = 90
	}
	if c.AWSCost.Granularity == "" {
		c.AWSCost.Granularity = "DAILY"
	}
	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 2
	}
	if c.Jobs.RetryLimit <= 0 {
		c.Jobs.RetryLimit = 3
	}
	if c.Jobs.RetryDelay <= 0 {
		c.Jobs.RetryDelay = 30 * time.Second
	}
	if c.Jobs.ResultTTL <= 0 {
		c.Jobs.ResultTTL = time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	anyStats := c.Stats.ARIMA.Enabled || c.Stats.SARIMA.Enabled || c.Stats.Prophet.Enabled ||
		c.Stats.NeuralProphet.Enabled || c.Stats.Darts.Enabled
	if anyStats && c.Stats.ServiceURL == "" {
		return fmt.Errorf("stats.service_url is required when a statistical adapter is enabled")
	}
	if c.Jobs.Enabled && (!c.Cache.Enabled || !c.Cache.Redis.Enabled) {
		return fmt.Errorf("jobs require cache.enabled and cache.redis.enabled")
	}
	if g := c.AWSCost.Granularity; g != "DAILY" && g != "MONTHLY" {
		return fmt.Errorf("awscost.granularity must be DAILY or MONTHLY, got '%s'", g)
	}
	return nil
}
