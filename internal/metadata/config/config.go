package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

const (
	DriverDynamoDB = "dynamodb"
	DriverRedis    = "redis"

	DriverS3    = "s3"
	DriverMinio = "minio"

	ModeCelebrities = "celebrities"
	ModeLabels      = "labels"
)

// Config holds the metadata service configuration shared by all binaries.
type Config struct {
	Server      ServerConfig      `json:"server" yaml:"server"`
	AWS         AWSConfig         `json:"aws" yaml:"aws"`
	Table       TableConfig       `json:"table" yaml:"table"`
	ObjectStore ObjectStoreConfig `json:"object_store" yaml:"object_store"`
	Recognition RecognitionConfig `json:"recognition" yaml:"recognition"`
	Redis       RedisConfig       `json:"redis" yaml:"redis"`
	Logger      logger.Config     `json:"logger" yaml:"logger"`
}

// ServerConfig configures the local gateway only.
type ServerConfig struct {
	Addr        string `json:"addr" yaml:"addr"`
	RoutePrefix string `json:"route_prefix" yaml:"route_prefix"`
	BodyLimit   int    `json:"body_limit" yaml:"body_limit"`
}

type AWSConfig struct {
	Region   string `json:"region" yaml:"region"`
	Endpoint string `json:"endpoint" yaml:"endpoint"` // e.g. localstack
}

type TableConfig struct {
	Name   string `json:"name" yaml:"name"`
	Driver string `json:"driver" yaml:"driver"` // "dynamodb", "redis"
}

type ObjectStoreConfig struct {
	Driver string      `json:"driver" yaml:"driver"` // "s3", "minio"
	Bucket string      `json:"bucket" yaml:"bucket"` // upload target for the local gateway
	Minio  MinioConfig `json:"minio" yaml:"minio"`
}

type MinioConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

type RecognitionConfig struct {
	Mode          string  `json:"mode" yaml:"mode"` // "celebrities", "labels"
	MaxLabels     int32   `json:"max_labels" yaml:"max_labels"`
	MinConfidence float32 `json:"min_confidence" yaml:"min_confidence"`
}

type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8090",
			RoutePrefix: "/local-infra-metadata-api",
			BodyLimit:   16 * 1024 * 1024, // 16MB
		},
		Table: TableConfig{
			Driver: DriverDynamoDB,
		},
		ObjectStore: ObjectStoreConfig{
			Driver: DriverS3,
		},
		Recognition: RecognitionConfig{
			Mode:          ModeCelebrities,
			MaxLabels:     10,
			MinConfidence: 50,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "metadata:",
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file, then applies environment overrides.
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "metadata", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		// Deployed functions ship without a config file.
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		parsedCfg = cfg
	}

	applyEnv(parsedCfg)
	if err := parsedCfg.Validate(); err != nil {
		return nil, err
	}
	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// applyEnv overrides file values with the deployment environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TABLE_NAME"); v != "" {
		cfg.Table.Name = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("AWS_ENDPOINT_URL"); v != "" {
		cfg.AWS.Endpoint = v
	}
}

// Validate checks the values every binary depends on.
func (c *Config) Validate() error {
	if c.Table.Name == "" {
		return fmt.Errorf("table name is required (set TABLE_NAME)")
	}

	switch c.Table.Driver {
	case DriverDynamoDB, DriverRedis:
	default:
		return fmt.Errorf("unknown table driver %q", c.Table.Driver)
	}

	switch c.ObjectStore.Driver {
	case DriverS3, DriverMinio:
	default:
		return fmt.Errorf("unknown object store driver %q", c.ObjectStore.Driver)
	}

	switch c.Recognition.Mode {
	case ModeCelebrities, ModeLabels:
	default:
		return fmt.Errorf("unknown recognition mode %q", c.Recognition.Mode)
	}
	return nil
}
