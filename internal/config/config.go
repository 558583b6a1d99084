package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Export   ExportConfig   `mapstructure:"export"`
	Report   ReportConfig   `mapstructure:"report"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Services ServicesConfig `mapstructure:"services"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Logger   LoggerConfig   `mapstructure:"logger"`

	services ServiceOptions
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"` // empty uses the embedded migrations
}

// BackendConfig holds the property-management REST API settings
type BackendConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Token        string        `mapstructure:"token"`
	PaymentsPath string        `mapstructure:"payments_path"`
	PageSize     int           `mapstructure:"page_size"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ExportConfig holds artifact output settings
type ExportConfig struct {
	StorageDir  string  `mapstructure:"storage_dir"`
	PDFCompress bool    `mapstructure:"pdf_compress"`
	PDFAuthor   string  `mapstructure:"pdf_author"`
	PreviewDPI  float64 `mapstructure:"preview_dpi"`
}

// ReportConfig holds display settings shared by both exporters
type ReportConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DateLayout     string `mapstructure:"date_layout"`
}

// LarkConfig holds Lark app credentials for failure notifications
type LarkConfig struct {
	AppID         string `mapstructure:"app_id"`
	AppSecret     string `mapstructure:"app_secret"`
	ReceiveID     string `mapstructure:"receive_id"`
	ReceiveIDType string `mapstructure:"receive_id_type"`
}

// ServicesConfig lists enabled optional services by name
type ServicesConfig struct {
	Enabled []string `mapstructure:"enabled"`
}

// SyncConfig holds payment mirror settings
type SyncConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	LookbackDays int           `mapstructure:"lookback_days"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads an optional .env file, then the YAML file at configPath (if
// any), then environment overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.path", "data/leases.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	v.SetDefault("backend.payments_path", "/api/payments/")
	v.SetDefault("backend.page_size", 100)
	v.SetDefault("backend.timeout", 30*time.Second)

	v.SetDefault("export.storage_dir", "data/exports")
	v.SetDefault("export.pdf_compress", true)
	v.SetDefault("export.preview_dpi", 72.0)

	v.SetDefault("report.currency_symbol", "KES")
	v.SetDefault("report.date_layout", "2006-01-02")

	v.SetDefault("lark.receive_id_type", "chat_id")

	v.SetDefault("services.enabled", []string{
		string(ServicePDFExport),
		string(ServiceSpreadsheetExport),
	})

	v.SetDefault("sync.interval", 15*time.Minute)
	v.SetDefault("sync.lookback_days", 400)
	v.SetDefault("sync.timeout", 2*time.Minute)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("backend.base_url", "BACKEND_BASE_URL")
	_ = v.BindEnv("backend.token", "BACKEND_TOKEN")
	_ = v.BindEnv("export.storage_dir", "EXPORT_STORAGE_DIR")
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("lark.receive_id", "LARK_RECEIVE_ID")
	_ = v.BindEnv("services.enabled", "SERVICES_ENABLED")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate validates the configuration and resolves the service options
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Export.StorageDir == "" {
		return fmt.Errorf("export.storage_dir is required")
	}
	if c.Report.CurrencySymbol == "" {
		return fmt.Errorf("report.currency_symbol is required")
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console: %q", c.Logger.Format)
	}

	opts, err := ParseServiceOptions(c.Services.Enabled)
	if err != nil {
		return fmt.Errorf("services.enabled: %w", err)
	}
	if opts.Enabled(ServicePaymentSync) {
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("backend.base_url is required when payment_sync is enabled")
		}
		if c.Sync.Interval <= 0 {
			return fmt.Errorf("sync.interval must be positive")
		}
	}
	c.services = opts

	return nil
}

// ServiceOptions returns the validated set of enabled services
func (c *Config) ServiceOptions() ServiceOptions {
	return c.services
}

// Address is the HTTP listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
