package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Address         string
		Host            string
		DebugAddress    string
		ShutdownTimeout time.Duration
		SessionMaxAge   time.Duration
		DisableReqLogs  bool
	}

	databaseConfig struct {
		Engine     string // postgres | sqlite | memory
		Name       string
		User       string
		Password   string
		Host       string
		Port       string
		DisableTLS bool
	}

	daoConfig struct {
		URL     string
		Timeout time.Duration
	}

	Config struct {
		AppName        string
		Env            string
		Build          string
		Debug          bool
		TestMode       bool
		SecretKey      string
		RollbarToken   string
		SendgridApiKey string
		FeedbackEmails []string
		WorkDir        string

		Server   serverConfig
		Database databaseConfig
		DAO      daoConfig

		defaultFromEmail string
	}
)

// NewConfig reads the configuration of the current ENV (DEV by default) from the environment,
// falling back to config/.env.<env> and to defaults.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Tourney")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "m1a+9=uv%sw3x&e0wzk!7s7f$e^h0y#q)2bv^8ytr9a@5o2$l(")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("feedbackEmails", []string{})

	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionMaxAge", 15*time.Minute)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "tourney")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("dao.url", "")
	v.SetDefault("dao.timeout", 5*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", "memory")
	case "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:        v.GetString("appName"),
		Env:            env,
		Build:          v.GetString("build"),
		Debug:          v.GetBool("debug"),
		TestMode:       v.GetBool("testMode"),
		SecretKey:      v.GetString("secretKey"),
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridApiKey: v.GetString("sendgridApiKey"),
		FeedbackEmails: v.GetStringSlice("feedbackEmails"),
		WorkDir:        wd,
		Server: serverConfig{
			Address:         v.GetString("server.address"),
			Host:            v.GetString("server.host"),
			DebugAddress:    v.GetString("server.debugAddress"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SessionMaxAge:   v.GetDuration("server.sessionMaxAge"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: databaseConfig{
			Engine:     v.GetString("database.engine"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		DAO: daoConfig{
			URL:     strings.TrimRight(v.GetString("dao.url"), "/"),
			Timeout: v.GetDuration("dao.timeout"),
		},
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}

// NewTestConfig returns the configuration used by tests: no debug output, an in-memory database
// and a fixed secret key.
func NewTestConfig() *Config {
	return &Config{
		AppName:        "Tourney",
		Env:            "TEST",
		Build:          "test",
		TestMode:       true,
		SecretKey:      "secret",
		FeedbackEmails: []string{"admin@tourney.test"},
		Server: serverConfig{
			Host:            "localhost",
			ShutdownTimeout: time.Second,
			SessionMaxAge:   15 * time.Minute,
			DisableReqLogs:  true,
		},
		Database:         databaseConfig{Engine: "memory"},
		defaultFromEmail: "noreply@tourney.test",
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

func (c databaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}
