package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Server Server `yaml:"server"`
	Redis  Redis  `yaml:"redis"`
	Pg     Pg     `yaml:"pg"`
	Minio  Minio  `yaml:"minio"`
	Board  Board  `yaml:"board"`
	Share  Share  `yaml:"share"`
	Log    Log    `yaml:"log"`
}

type Server struct {
	Port           int      `yaml:"port"`
	BaseURL        string   `yaml:"base_url"` // public origin used in share urls and QR codes
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Redis struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Dbname   string `yaml:"dbname"`
	InitPath string `yaml:"initpath"`
}

type Minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"` // origin media urls are built from
}

type Board struct {
	TTLSeconds     int   `yaml:"ttl_seconds"`      // rolling inactivity expiry, refreshed on every write
	MaxUploadBytes int64 `yaml:"max_upload_bytes"` // single file size cap
}

type Share struct {
	DefaultExpirySeconds int64 `yaml:"default_expiry_seconds"`
	MaxExpirySeconds     int64 `yaml:"max_expiry_seconds"`
	SweepIntervalSeconds int   `yaml:"sweep_interval_seconds"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Private struct {
	PgPassword     string `yaml:"pg_password"`
	RedisPassword  string `yaml:"redis_password"`
	MinioSecretKey string `yaml:"minio_secret_key"`
}

func (c *Config) BoardTTL() time.Duration {
	return time.Duration(c.Public.Board.TTLSeconds) * time.Second
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Public.Share.SweepIntervalSeconds) * time.Second
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Public.Server.Port == 0 {
		c.Public.Server.Port = 8080
	}
	if c.Public.Board.TTLSeconds == 0 {
		c.Public.Board.TTLSeconds = 7 * 24 * 60 * 60
	}
	if c.Public.Board.MaxUploadBytes == 0 {
		c.Public.Board.MaxUploadBytes = 50 << 20
	}
	if c.Public.Share.DefaultExpirySeconds == 0 {
		c.Public.Share.DefaultExpirySeconds = 24 * 60 * 60
	}
	if c.Public.Share.MaxExpirySeconds == 0 {
		c.Public.Share.MaxExpirySeconds = 30 * 24 * 60 * 60
	}
	if c.Public.Share.SweepIntervalSeconds == 0 {
		c.Public.Share.SweepIntervalSeconds = 60 * 60
	}
	if c.Public.Log.Level == "" {
		c.Public.Log.Level = "info"
	}
}

// applyEnvOverrides lets secrets come from the environment (or an .env
// file loaded by the caller) instead of private.yaml.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		c.Private.PgPassword = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Private.RedisPassword = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Private.MinioSecretKey = v
	}
}
