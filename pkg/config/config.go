package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config = viper.New()

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	AppName     string `mapstructure:"APP_NAME"`
	AppVersion  string `mapstructure:"APP_VERSION"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	Server     struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`

		SlowQueryThreshold time.Duration `mapstructure:"SLOW_QUERY_THRESHOLD"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Auth struct {
		JWTSecret string        `mapstructure:"JWT_SECRET"`
		TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`
	} `mapstructure:"AUTH"`
	Gateway struct {
		Provider string        `mapstructure:"PROVIDER"`
		Latency  time.Duration `mapstructure:"LATENCY"`
	} `mapstructure:"GATEWAY"`
	Minio struct {
		Endpoint   string `mapstructure:"ENDPOINT"`
		AccessKey  string `mapstructure:"ACCESS_KEY"`
		SecretKey  string `mapstructure:"SECRET_KEY"`
		Secure     bool   `mapstructure:"SECURE"`
		BucketName string `mapstructure:"BUCKET_NAME"`
	} `mapstructure:"MINIO"`
	Metrics struct {
		Enable bool `mapstructure:"ENABLE"`
	} `mapstructure:"METRICS"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

func LoadConfig() *Config {

	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	setDefaults()

	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			zap.L().Error("failed to read config file", zap.Error(err))
			os.Exit(1)
		}
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	return &cfg
}

func setDefaults() {
	config.SetDefault("APP_ENV", "development")
	config.SetDefault("APP_NAME", "trustfund")
	config.SetDefault("FRONTEND_URL", "http://localhost:3000")
	config.SetDefault("HTTP_SERVER.ADDR", ":8080")
	config.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	config.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 15*time.Second)
	config.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", 60*time.Second)
	config.SetDefault("DATABASE.TYPE", "postgres")
	config.SetDefault("DATABASE.SSLMODE", "disable")
	config.SetDefault("DATABASE.SLOW_QUERY_THRESHOLD", 200*time.Millisecond)
	config.SetDefault("REDIS.ADDR", "127.0.0.1:6379")
	config.SetDefault("AUTH.TOKEN_TTL", 24*time.Hour)
	config.SetDefault("GATEWAY.PROVIDER", "mock_gateway")
	config.SetDefault("GATEWAY.LATENCY", 1500*time.Millisecond)
	config.SetDefault("MINIO.BUCKET_NAME", "campaign-images")
}
