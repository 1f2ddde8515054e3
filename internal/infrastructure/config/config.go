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
)

type Config struct {
	Env        string
	HTTPServer HTTPServer
	GRPCServer GRPCServer
	Database   Database
	Prometheus Prometheus
	Redis      Redis
	Feed       Feed
	Auth       Auth
	Media      Media
}

type HTTPServer struct {
	Address      string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GRPCServer struct {
	Address string
	Port    int
}

type Database struct {
	Username string
	Password string
	Host     string
	Port     string
	DbName   string
	SSLMode  string
}

func (d Database) DSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DbName, d.SSLMode)
}

type Prometheus struct {
	Address string
	Port    int
}

type Redis struct {
	Enabled  bool
	Address  string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type Feed struct {
	PostsPerPage  int
	IndexCacheTTL time.Duration
}

type Auth struct {
	JWTSecret  string
	TokenTTL   time.Duration
	CookieName string
}

type Media struct {
	Root           string
	URLPrefix      string
	MaxUploadBytes int64
}

// Load reads defaults, an optional config/config.yaml (or the file at path)
// and YATUBE_* environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix("yatube")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		HTTPServer: HTTPServer{
			Address:      v.GetString("http_server.address"),
			Port:         v.GetInt("http_server.port"),
			ReadTimeout:  v.GetDuration("http_server.read_timeout"),
			WriteTimeout: v.GetDuration("http_server.write_timeout"),
		},
		GRPCServer: GRPCServer{
			Address: v.GetString("grpc_server.address"),
			Port:    v.GetInt("grpc_server.port"),
		},
		Database: Database{
			Username: v.GetString("database.username"),
			Password: v.GetString("database.password"),
			Host:     v.GetString("database.host"),
			Port:     v.GetString("database.port"),
			DbName:   v.GetString("database.db_name"),
			SSLMode:  v.GetString("database.ssl_mode"),
		},
		Prometheus: Prometheus{
			Address: v.GetString("prometheus.address"),
			Port:    v.GetInt("prometheus.port"),
		},
		Redis: Redis{
			Enabled:  v.GetBool("redis.enabled"),
			Address:  v.GetString("redis.address"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			PoolSize: v.GetInt("redis.pool_size"),
		},
		Feed: Feed{
			PostsPerPage:  v.GetInt("feed.posts_per_page"),
			IndexCacheTTL: v.GetDuration("feed.index_cache_ttl"),
		},
		Auth: Auth{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
			CookieName: v.GetString("auth.cookie_name"),
		},
		Media: Media{
			Root:           v.GetString("media.root"),
			URLPrefix:      v.GetString("media.url_prefix"),
			MaxUploadBytes: v.GetInt64("media.max_upload_bytes"),
		},
	}

	if cfg.Feed.PostsPerPage <= 0 {
		return nil, fmt.Errorf("feed.posts_per_page must be positive, got %d", cfg.Feed.PostsPerPage)
	}
	if cfg.Feed.IndexCacheTTL < 0 {
		return nil, fmt.Errorf("feed.index_cache_ttl must not be negative, got %s", cfg.Feed.IndexCacheTTL)
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		log.Printf("Error loading config: %s", err)
		os.Exit(1)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("http_server.address", "0.0.0.0")
	v.SetDefault("http_server.port", 8000)
	v.SetDefault("http_server.read_timeout", 10*time.Second)
	v.SetDefault("http_server.write_timeout", 15*time.Second)

	v.SetDefault("grpc_server.address", "0.0.0.0")
	v.SetDefault("grpc_server.port", 50060)

	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "admin")
	v.SetDefault("database.host", "yatube-db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.db_name", "yatube")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("prometheus.address", "0.0.0.0")
	v.SetDefault("prometheus.port", 9108)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.address", "redis")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("feed.posts_per_page", 10)
	v.SetDefault("feed.index_cache_ttl", 20*time.Second)

	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "yatube_session")

	v.SetDefault("media.root", "media")
	v.SetDefault("media.url_prefix", "/media/")
	v.SetDefault("media.max_upload_bytes", 5<<20)
}
