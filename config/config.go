package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted in STORAGE_DRIVER
const (
	StorageDriverFile     = "file"
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverS3       = "s3"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Redis   RedisConfig
	DB      DBConfig
	SQLite  SQLiteConfig
	S3      S3Config
	Upload  UploadConfig
	Log     LogConfig
}

type AppConfig struct {
	Env      string
	Timezone string
}

type StorageConfig struct {
	Driver string
	Key    string
	Dir    string
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type SQLiteConfig struct {
	Path string
}

type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type UploadConfig struct {
	MaxBytes    int64
	Concurrency int
	Timeout     time.Duration
}

type LogConfig struct {
	Level string
}

// LoadConfig reads the optional env file at path (".env" when empty) and the process environment.
// A missing env file is not an error; every key has a default.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	config := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Timezone: v.GetString("APP_TIMEZONE"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("STORAGE_DRIVER"),
			Key:    v.GetString("STORAGE_KEY"),
			Dir:    v.GetString("STORAGE_DIR"),
		},
		Redis: RedisConfig{
			Host:      v.GetString("REDIS_HOST"),
			Port:      v.GetString("REDIS_PORT"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		S3: S3Config{
			Bucket:          v.GetString("S3_BUCKET"),
			Prefix:          v.GetString("S3_PREFIX"),
			Region:          v.GetString("S3_REGION"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		},
		Upload: UploadConfig{
			MaxBytes:    v.GetInt64("UPLOAD_MAX_BYTES"),
			Concurrency: v.GetInt("UPLOAD_CONCURRENCY"),
			Timeout:     v.GetDuration("UPLOAD_TIMEOUT"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("STORAGE_DRIVER", StorageDriverFile)
	v.SetDefault("STORAGE_KEY", "dental-center-data")
	v.SetDefault("STORAGE_DIR", "./data")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("SQLITE_PATH", "./data/dental-center.db")
	v.SetDefault("S3_PREFIX", "state/")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("UPLOAD_CONCURRENCY", 4)
	v.SetDefault("UPLOAD_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverFile, StorageDriverMemory, StorageDriverRedis, StorageDriverPostgres, StorageDriverSQLite:
	case StorageDriverS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Upload.Concurrency <= 0 {
		return fmt.Errorf("UPLOAD_CONCURRENCY must be positive, got %d", c.Upload.Concurrency)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone used for calendar-day queries
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
