package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string
		Server       ServerConfig
		Database     DatabaseConfig
		Redis        RedisConfig
		Log          LogConfig
		Rules        RulesConfig
	}

	ServerConfig struct {
		Host            string
		Port            int
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		AllowOrigins    []string
	}

	DatabaseConfig struct {
		Enabled       bool
		Engine        string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
		MaxOpenConns  int
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		StatsTTL time.Duration
	}

	LogConfig struct {
		Level  string
		Format string // json | console
	}

	// RulesConfig toggles business rules that are soft by default.
	RulesConfig struct {
		EnforceRoomGender bool
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig reads the configuration from defaults, `config/.env.<env>` and the environment.
// Environment variables are prefixed by the upper-cased env name, e.g. DEV_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Foyer")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k3v!x9-2mz)fo#yer$+4q=ld&7wp(r1t)*e5(#uj8h^$bn0aci")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server_host", "")
	v.SetDefault("server_port", 8000)
	v.SetDefault("server_debugHost", "0.0.0.0:4000")
	v.SetDefault("server_readTimeout", 5*time.Second)
	v.SetDefault("server_writeTimeout", 5*time.Second)
	v.SetDefault("server_shutdownTimeout", 5*time.Second)
	v.SetDefault("server_allowOrigins", "http://localhost:3000")

	v.SetDefault("database_enabled", true)
	v.SetDefault("database_engine", "postgres")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", 5432)
	v.SetDefault("database_user", "foyer")
	v.SetDefault("database_password", "foyer")
	v.SetDefault("database_adminUser", "")
	v.SetDefault("database_adminPassword", "")
	v.SetDefault("database_name", "foyer")
	v.SetDefault("database_disableTLS", true)
	v.SetDefault("database_maxOpenConns", 10)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_statsTTL", 30*time.Second)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("rules_enforceRoomGender", false)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server_host"),
			Port:            v.GetInt("server_port"),
			DebugHost:       v.GetString("server_debugHost"),
			ReadTimeout:     v.GetDuration("server_readTimeout"),
			WriteTimeout:    v.GetDuration("server_writeTimeout"),
			ShutdownTimeout: v.GetDuration("server_shutdownTimeout"),
			AllowOrigins:    splitList(v.GetString("server_allowOrigins")),
		},
		Database: DatabaseConfig{
			Enabled:       v.GetBool("database_enabled"),
			Engine:        v.GetString("database_engine"),
			Host:          v.GetString("database_host"),
			Port:          v.GetInt("database_port"),
			User:          v.GetString("database_user"),
			Password:      v.GetString("database_password"),
			AdminUser:     v.GetString("database_adminUser"),
			AdminPassword: v.GetString("database_adminPassword"),
			Name:          v.GetString("database_name"),
			DisableTLS:    v.GetBool("database_disableTLS"),
			MaxOpenConns:  v.GetInt("database_maxOpenConns"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
			StatsTTL: v.GetDuration("redis_statsTTL"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Rules: RulesConfig{
			EnforceRoomGender: v.GetBool("rules_enforceRoomGender"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
