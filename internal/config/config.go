package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the admin panel. Values come from
// config.yaml, overridable through DISPARABOT_* environment variables.
type Config struct {
	Server struct {
		Port int
	}
	Upstream struct {
		BaseURL        string
		TimeoutSeconds int
		// ServiceToken authenticates background jobs (status polling,
		// scraper runs) that happen outside a browser session.
		ServiceToken string
	}
	Session struct {
		JWTSecret  string
		CookieName string
		TTLMinutes int
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Minio struct {
		Endpoint      string
		AccessKey     string
		SecretKey     string
		Bucket        string
		PublicBaseURL string
		UseSSL        bool
	}
	Cache struct {
		ListTTLSeconds int
	}
	Poller struct {
		IntervalSeconds int
	}
	Scraper struct {
		UserAgent   string
		MaxProducts int
	}
	Linktree struct {
		HostPrefix string
	}
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("disparabot")
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("upstream.baseurl", "http://localhost:3000")
	viper.SetDefault("upstream.timeoutseconds", 15)
	viper.SetDefault("session.cookiename", "disparabot_session")
	viper.SetDefault("session.ttlminutes", 720)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.accesskey", "minioadmin")
	viper.SetDefault("minio.secretkey", "minioadmin")
	viper.SetDefault("minio.bucket", "disparabot-media")
	viper.SetDefault("cache.listttlseconds", 60)
	viper.SetDefault("poller.intervalseconds", 5)
	viper.SetDefault("scraper.useragent", "Disparabot Scraper v1.0")
	viper.SetDefault("scraper.maxproducts", 50)
	viper.SetDefault("linktree.hostprefix", "linktree.")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// Missing config file is fine, defaults and env vars cover it
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c *Config) ListTTL() time.Duration {
	return time.Duration(c.Cache.ListTTLSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poller.IntervalSeconds) * time.Second
}
