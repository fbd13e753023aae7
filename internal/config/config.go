// Package config loads directory settings from .env, the environment and an
// optional YAML file. Environment variables use the DIRECTORY_ prefix with
// dots replaced by underscores, e.g. DIRECTORY_MINIO_ENDPOINT.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"brightroots/internal/models"
)

// Persistent channel backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMinIO  = "minio"
)

type Config struct {
	Persistent string
	SQLitePath string
	Namespace  string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOBucket    string
	MinIORegion    string

	KafkaBroker string
	KafkaTopic  string
	KafkaGroup  string
	Origin      string

	DatabaseURL string
	Demo        bool

	SyncInterval     time.Duration
	DiscoveryTimeout time.Duration
	DiscoveryMaxAge  time.Duration
	Default          models.Coordinates

	GeolocationURL        string
	GeolocationPermission string
	GeocoderURL           string
	GeocoderRate          float64

	Address         string
	AddressCapacity int
}

func setDefaults(v *viper.Viper) {
	host, _ := os.Hostname()

	v.SetDefault("persistent", BackendSQLite)
	v.SetDefault("sqlite.path", "data/directory.db")
	v.SetDefault("namespace", "default")
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "directory")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("kafka.broker", "")
	v.SetDefault("kafka.topic", "directory-storage")
	v.SetDefault("kafka.group", "directory-sync")
	v.SetDefault("origin", host)
	v.SetDefault("database.url", "")
	v.SetDefault("demo", false)
	v.SetDefault("sync.interval", 3*time.Second)
	v.SetDefault("discovery.timeout", 10*time.Second)
	v.SetDefault("discovery.max_age", 5*time.Minute)
	v.SetDefault("default.lat", 28.4595)
	v.SetDefault("default.lng", 77.0266)
	v.SetDefault("geolocation.url", "http://ip-api.com/json/?fields=status,message,lat,lon")
	v.SetDefault("geolocation.permission", "prompt")
	v.SetDefault("geocoder.url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geocoder.rate", 1.0)
	v.SetDefault("address.url", "https://brightroots.app/home")
	v.SetDefault("address.capacity", 8192)
}

// Load reads configuration into v. path names a YAML file; when empty,
// ./directory.yaml is used if it exists.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("DIRECTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("directory")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		log.Println("Using config file:", v.ConfigFileUsed())
	}

	cfg := &Config{
		Persistent: strings.ToLower(v.GetString("persistent")),
		SQLitePath: v.GetString("sqlite.path"),
		Namespace:  v.GetString("namespace"),

		MinIOEndpoint:  v.GetString("minio.endpoint"),
		MinIOAccessKey: v.GetString("minio.access_key"),
		MinIOSecretKey: v.GetString("minio.secret_key"),
		MinIOUseSSL:    v.GetBool("minio.use_ssl"),
		MinIOBucket:    v.GetString("minio.bucket"),
		MinIORegion:    v.GetString("minio.region"),

		KafkaBroker: v.GetString("kafka.broker"),
		KafkaTopic:  v.GetString("kafka.topic"),
		KafkaGroup:  v.GetString("kafka.group"),
		Origin:      v.GetString("origin"),

		DatabaseURL: v.GetString("database.url"),
		Demo:        v.GetBool("demo"),

		SyncInterval:     v.GetDuration("sync.interval"),
		DiscoveryTimeout: v.GetDuration("discovery.timeout"),
		DiscoveryMaxAge:  v.GetDuration("discovery.max_age"),
		Default: models.Coordinates{
			Lat: v.GetFloat64("default.lat"),
			Lng: v.GetFloat64("default.lng"),
		},

		GeolocationURL:        v.GetString("geolocation.url"),
		GeolocationPermission: strings.ToLower(v.GetString("geolocation.permission")),
		GeocoderURL:           v.GetString("geocoder.url"),
		GeocoderRate:          v.GetFloat64("geocoder.rate"),

		Address:         v.GetString("address.url"),
		AddressCapacity: v.GetInt("address.capacity"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Persistent {
	case BackendMemory, BackendSQLite:
	case BackendMinIO:
		if c.MinIOEndpoint == "" {
			return errors.New("config: minio backend needs minio.endpoint")
		}
	default:
		return fmt.Errorf("config: unknown persistent backend %q", c.Persistent)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("config: sync.interval must be positive, got %s", c.SyncInterval)
	}
	if c.AddressCapacity <= 0 {
		return fmt.Errorf("config: address.capacity must be positive, got %d", c.AddressCapacity)
	}
	return nil
}

// LoadEnv reads .env into the process environment if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set directly.")
	}
}
