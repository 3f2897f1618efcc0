package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	URLTTLMinutes   int
}

// Hub3Config holds the fixed header fields of every generated payload.
type Hub3Config struct {
	BankCode string
	Currency string
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type AppConfig struct {
	Port     string
	Postgres PostgresConfig
	Redis    RedisConfig

	StorageDriver     string
	ExportDir         string
	FilesPublicPrefix string
	ExternalURL       string
	S3                S3Config

	JobCachePrefix string
	MaxBatchSize   int
	Hub3           Hub3Config
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func storageDriver(s string) string {
	switch d := strings.ToLower(strings.TrimSpace(s)); d {
	case StorageLocal, StorageS3:
		return d
	default:
		log.Fatalf("invalid STORAGE_DRIVER %q (want local or s3)", s)
		return ""
	}
}

func Load() AppConfig {
	return AppConfig{
		Port: getenv("APP_PORT", "8010"),
		Postgres: PostgresConfig{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     mustAtoi(getenv("PG_PORT", "5432")),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", "hello-world"),
			DBName:   getenv("PG_DB", "hub3"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "hub3_slips_"),
		},
		StorageDriver:     storageDriver(getenv("STORAGE_DRIVER", StorageLocal)),
		ExportDir:         getenv("EXPORT_DIR", "./slips"),
		FilesPublicPrefix: getenv("FILES_PUBLIC_PREFIX", "/files"),
		ExternalURL:       getenv("EXTERNAL_URL", ""),
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "slips"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", ""),
			URLTTLMinutes:   mustAtoi(getenv("S3_URL_TTL_MINUTES", "60")),
		},
		JobCachePrefix: getenv("JOB_CACHE_PREFIX", "slip_jobs"),
		MaxBatchSize:   mustAtoi(getenv("MAX_BATCH_SIZE", "50000")),
		Hub3: Hub3Config{
			BankCode: getenv("HUB3_BANK_CODE", "HRVHUB30"),
			Currency: getenv("HUB3_CURRENCY", "EUR"),
		},
	}
}
