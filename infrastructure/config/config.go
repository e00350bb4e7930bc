package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Backend selection for the room store.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendAuto   = "auto"
)

type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Room   RoomConfig
	Cors   CorsConfig
	Logger LoggerConfig
}

type ServerConfig struct {
	ExternalPort string
	RunMode      string
	Domain       string
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	Db           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

type RoomConfig struct {
	// Backend is redis, memory, or auto (try redis, fall back to memory).
	Backend string
	// TTL is the fixed age after which a room is discarded.
	TTL time.Duration
	// SweepInterval is how often the expiry sweep runs.
	SweepInterval time.Duration
	// PollInterval is advertised to clients as the snapshot poll cadence.
	PollInterval time.Duration
}

type CorsConfig struct {
	AllowOrigins string
}

type LoggerConfig struct {
	Level string
}

func GetConfig() *Config {
	cfgPath := getConfigPath(os.Getenv("APP_ENV"))
	v, err := LoadConfig(cfgPath, "yml")
	if err != nil {
		log.Fatalf("Error in load config %v", err)
	}

	cfg, err := ParseConfig(v)
	if err != nil {
		log.Fatalf("Error in parse config %v", err)
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.ExternalPort = envPort
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Unable to parse config: %v", err)
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig(filename string, fileType string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetConfigName(filename)

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./infrastructure/config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../infrastructure/config")
	v.AddConfigPath("../../config")

	if wd, err := os.Getwd(); err == nil {
		v.AddConfigPath(filepath.Join(wd, "config"))
		v.AddConfigPath(filepath.Join(wd, "infrastructure", "config"))
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Unable to read config: %v", err)
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}

	return v, nil
}

func getConfigPath(env string) string {
	switch env {
	case "docker":
		return "config-docker"
	case "production":
		return "config-production"
	default:
		return "config-development"
	}
}

func (c *Config) applyDefaults() {
	if c.Room.Backend == "" {
		c.Room.Backend = BackendAuto
	}
	if c.Room.TTL == 0 {
		c.Room.TTL = 24 * time.Hour
	}
	if c.Room.SweepInterval == 0 {
		c.Room.SweepInterval = 6 * time.Hour
	}
	if c.Room.PollInterval == 0 {
		c.Room.PollInterval = 30 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Server.ExternalPort == "" {
		return errors.New("server.externalPort is required")
	}

	switch c.Room.Backend {
	case BackendRedis, BackendMemory, BackendAuto:
	default:
		return fmt.Errorf("room.backend must be one of redis, memory, auto (got %q)", c.Room.Backend)
	}

	if c.Room.Backend != BackendMemory {
		if c.Redis.Host == "" {
			return errors.New("redis.host is required")
		}
		if c.Redis.Port == "" {
			return errors.New("redis.port is required")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.RunMode == "release" || c.Server.RunMode == "production"
}

func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%s", c.Server.ExternalPort)
}
