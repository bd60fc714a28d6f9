package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	API         APIConfig
	Session     SessionConfig
	Redis       RedisConfig
	Poll        PollConfig
	Auth        AuthConfig
	MQTT        MQTTConfig
	Metrics     MetricsConfig
	Simulator   SimulatorConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
}

type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS float64 // 0 disables client-side limiting
	RateBurst    int
}

type SessionConfig struct {
	Backend string // file or redis
	Dir     string
	Key     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PollConfig struct {
	DeviceInterval   time.Duration
	FleetInterval    time.Duration
	CustomerInterval time.Duration
	MaxBackoff       time.Duration
}

type AuthConfig struct {
	AdminScopes []string
	// StaticCredentials uses the form id:secret:role[:company][;...]
	StaticCredentials string
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         int
}

type MetricsConfig struct {
	Addr string
}

type SimulatorConfig struct {
	Host string
	Port string
	Tick time.Duration
}

type RateLimitConfig struct {
	GeneralRPS   float64
	GeneralBurst int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("API_BASE_URL", "http://localhost:3000")
	viper.SetDefault("API_TIMEOUT", 10*time.Second)
	viper.SetDefault("API_RATE_LIMIT_RPS", 0)
	viper.SetDefault("API_RATE_LIMIT_BURST", 5)
	viper.SetDefault("SESSION_BACKEND", "file")
	viper.SetDefault("SESSION_DIR", defaultSessionDir())
	viper.SetDefault("SESSION_KEY", "nexus_user")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("POLL_DEVICE_INTERVAL", time.Second)
	viper.SetDefault("POLL_FLEET_INTERVAL", 5*time.Second)
	viper.SetDefault("POLL_CUSTOMER_INTERVAL", 5*time.Second)
	viper.SetDefault("POLL_MAX_BACKOFF", 0)
	viper.SetDefault("ADMIN_SCOPES", []string{"HVAC_A", "HVAC_B"})
	viper.SetDefault("MQTT_CLIENT_ID", "nexus-hvac-client")
	viper.SetDefault("MQTT_TOPIC_PREFIX", "nexus/devices")
	viper.SetDefault("MQTT_QOS", 0)
	viper.SetDefault("SIM_HOST", "0.0.0.0")
	viper.SetDefault("SIM_PORT", "3000")
	viper.SetDefault("SIM_TICK", time.Second)
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 50)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 100)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{"Content-Type", "X-Request-ID"})
	viper.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	viper.SetDefault("CORS_MAX_AGE", 43200)
}

// Load reads .env (when present) and the environment. Flags, if given, are
// bound under FlagKey(name) and win over both once set.
func Load(flags *pflag.FlagSet) (*Config, error) {
	setDefaults()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			bindErr = viper.BindPFlag(FlagKey(f.Name), f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		API: APIConfig{
			BaseURL:      strings.TrimRight(viper.GetString("API_BASE_URL"), "/"),
			Timeout:      viper.GetDuration("API_TIMEOUT"),
			RateLimitRPS: viper.GetFloat64("API_RATE_LIMIT_RPS"),
			RateBurst:    viper.GetInt("API_RATE_LIMIT_BURST"),
		},
		Session: SessionConfig{
			Backend: viper.GetString("SESSION_BACKEND"),
			Dir:     viper.GetString("SESSION_DIR"),
			Key:     viper.GetString("SESSION_KEY"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Poll: PollConfig{
			DeviceInterval:   viper.GetDuration("POLL_DEVICE_INTERVAL"),
			FleetInterval:    viper.GetDuration("POLL_FLEET_INTERVAL"),
			CustomerInterval: viper.GetDuration("POLL_CUSTOMER_INTERVAL"),
			MaxBackoff:       viper.GetDuration("POLL_MAX_BACKOFF"),
		},
		Auth: AuthConfig{
			AdminScopes:       splitList(viper.GetStringSlice("ADMIN_SCOPES")),
			StaticCredentials: viper.GetString("STATIC_CREDENTIALS"),
		},
		MQTT: MQTTConfig{
			Broker:      viper.GetString("MQTT_BROKER"),
			ClientID:    viper.GetString("MQTT_CLIENT_ID"),
			Username:    viper.GetString("MQTT_USERNAME"),
			Password:    viper.GetString("MQTT_PASSWORD"),
			TopicPrefix: viper.GetString("MQTT_TOPIC_PREFIX"),
			QoS:         viper.GetInt("MQTT_QOS"),
		},
		Metrics: MetricsConfig{
			Addr: viper.GetString("METRICS_ADDR"),
		},
		Simulator: SimulatorConfig{
			Host: viper.GetString("SIM_HOST"),
			Port: viper.GetString("SIM_PORT"),
			Tick: viper.GetDuration("SIM_TICK"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	switch c.Session.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Poll.DeviceInterval <= 0 || c.Poll.FleetInterval <= 0 || c.Poll.CustomerInterval <= 0 {
		return errors.New("poll intervals must be positive")
	}
	return nil
}

// FlagKey maps a flag name such as "api-base-url" to its config key.
func FlagKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (c *SimulatorConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// splitList accepts both real slices and a single comma separated value,
// which is what an environment variable yields.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nexus-hvac"
	}
	return filepath.Join(home, ".nexus-hvac")
}
