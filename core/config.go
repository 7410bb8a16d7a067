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

const (
	BackendRest     = "rest"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type (
	Config struct {
		Env              string
		Build            string
		AppName          string
		Debug            bool
		TestMode         bool
		SecretKey        string
		Locale           string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string

		Server   ServerConfig
		Backend  BackendConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Portal   PortalConfig
	}

	ServerConfig struct {
		Address            string
		Host               string
		DebugHost          string
		BodyLimit          string
		JWTExpirationDelta time.Duration
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		ShutdownTimeout    time.Duration
	}

	// BackendConfig selects the data store the portal talks to.
	BackendConfig struct {
		Driver  string // rest | postgres | memory
		RestURL string
		RestKey string
		Timeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	PortalConfig struct {
		AvatarMaxBytes  int64
		ImportMaxBytes  int64
		StrictAnonymity bool
		SubmitLockTTL   time.Duration

		SeedCounselorName     string
		SeedCounselorEmail    string
		SeedCounselorPassword string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig reads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the current env, e.g. `DEV_SECRETKEY`, `PROD_DATABASE_HOST`.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "Rubikon")
	conf.SetDefault("secretKey", "k2b#9s!rubikon-dev-only-4m@x7q^w1z&e5t0p")
	conf.SetDefault("locale", "id")
	conf.SetDefault("frontendBaseURL", "http://localhost:5173")
	conf.SetDefault("defaultFromEmail", "Rubikon <noreply@localhost>")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")

	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.bodyLimit", "4M")
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.readTimeout", 5*time.Second)
	conf.SetDefault("server.writeTimeout", 10*time.Second)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)

	conf.SetDefault("backend.driver", BackendMemory)
	conf.SetDefault("backend.restURL", "")
	conf.SetDefault("backend.restKey", "")
	conf.SetDefault("backend.timeout", 15*time.Second)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "rubikon")
	conf.SetDefault("database.user", "rubikon")
	conf.SetDefault("database.password", "rubikon")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "postgres")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("redis.addr", "")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)

	conf.SetDefault("portal.avatarMaxBytes", 2*1024*1024)
	conf.SetDefault("portal.importMaxBytes", 1024*1024)
	conf.SetDefault("portal.strictAnonymity", true)
	conf.SetDefault("portal.submitLockTTL", 10*time.Second)
	conf.SetDefault("portal.seedCounselorName", "Guru BK Utama")
	conf.SetDefault("portal.seedCounselorEmail", "konselor@sekolah.id")
	conf.SetDefault("portal.seedCounselorPassword", "password123")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	fromEmail, err := mail.ParseAddress(conf.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		Env:              env,
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		SecretKey:        conf.GetString("secretKey"),
		Locale:           conf.GetString("locale"),
		WorkDir:          wd,
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: *fromEmail,
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Address:            conf.GetString("server.address"),
			Host:               conf.GetString("server.host"),
			DebugHost:          conf.GetString("server.debugHost"),
			BodyLimit:          conf.GetString("server.bodyLimit"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
			ReadTimeout:        conf.GetDuration("server.readTimeout"),
			WriteTimeout:       conf.GetDuration("server.writeTimeout"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
		},
		Backend: BackendConfig{
			Driver:  strings.ToLower(conf.GetString("backend.driver")),
			RestURL: strings.TrimSuffix(conf.GetString("backend.restURL"), "/"),
			RestKey: conf.GetString("backend.restKey"),
			Timeout: conf.GetDuration("backend.timeout"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Addr:     conf.GetString("redis.addr"),
			Password: conf.GetString("redis.password"),
			DB:       conf.GetInt("redis.db"),
		},
		Portal: PortalConfig{
			AvatarMaxBytes:        conf.GetInt64("portal.avatarMaxBytes"),
			ImportMaxBytes:        conf.GetInt64("portal.importMaxBytes"),
			StrictAnonymity:       conf.GetBool("portal.strictAnonymity"),
			SubmitLockTTL:         conf.GetDuration("portal.submitLockTTL"),
			SeedCounselorName:     conf.GetString("portal.seedCounselorName"),
			SeedCounselorEmail:    conf.GetString("portal.seedCounselorEmail"),
			SeedCounselorPassword: conf.GetString("portal.seedCounselorPassword"),
		},
	}
}
