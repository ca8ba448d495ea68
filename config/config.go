package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL        string
	JWTSecretKey       string
	ServerPort         int
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	PublicURL          string

	R2   R2Config
	SMTP SMTPConfig
	XP   XPRewards
	Jobs JobsConfig
}

// R2Config is optional; avatar uploads are disabled when it is empty.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

// SMTPConfig is optional; notification emails are skipped when Host is empty.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// XPRewards lists the XP granted per activity.
type XPRewards struct {
	MatchPlayed      int
	MatchWon         int
	CourtBooked      int
	TrainingAttended int
	DailyLogin       int
}

var DefaultXPRewards = XPRewards{
	MatchPlayed:      100,
	MatchWon:         150,
	CourtBooked:      25,
	TrainingAttended: 50,
	DailyLogin:       10,
}

type JobsConfig struct {
	// StreakCheckCron is a crontab expression for the streak expiry job.
	StreakCheckCron string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		DatabaseURL:  get("DATABASE_URL"),
		JWTSecretKey: get("JWT_SECRET_KEY"),
		PublicURL:    strings.TrimRight(get("PUBLIC_URL"), "/"),
		XP:           DefaultXPRewards,
		Jobs:         JobsConfig{StreakCheckCron: "5 0 * * *"},
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecretKey == "" {
		return nil, errors.New("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intOrDefault(get("SERVER_PORT"), 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if lvl := get("LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	if origins := get("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	} else {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	cfg.R2 = R2Config{
		AccountID:       get("R2_ACCOUNT_ID"),
		AccessKeyID:     get("R2_ACCESS_KEY_ID"),
		SecretAccessKey: get("R2_SECRET_ACCESS_KEY"),
		BucketName:      get("R2_BUCKET_NAME"),
		PublicBaseURL:   get("R2_PUBLIC_BASE_URL"),
	}
	if err := validateR2(cfg.R2); err != nil {
		return nil, err
	}

	cfg.SMTP = SMTPConfig{
		Host: get("SMTP_HOST"),
		User: get("SMTP_USER"),
		Pass: get("SMTP_PASS"),
		From: get("SMTP_FROM"),
	}
	if cfg.SMTP.Port, err = intOrDefault(get("SMTP_PORT"), 587); err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT environment variable: %w", err)
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		return nil, errors.New("SMTP_FROM must be set when SMTP_HOST is configured")
	}

	xpVars := []struct {
		key string
		dst *int
	}{
		{"XP_MATCH_PLAYED", &cfg.XP.MatchPlayed},
		{"XP_MATCH_WON", &cfg.XP.MatchWon},
		{"XP_COURT_BOOKED", &cfg.XP.CourtBooked},
		{"XP_TRAINING_ATTENDED", &cfg.XP.TrainingAttended},
		{"XP_DAILY_LOGIN", &cfg.XP.DailyLogin},
	}
	for _, v := range xpVars {
		n, err := intOrDefault(get(v.key), *v.dst)
		if err != nil {
			return nil, fmt.Errorf("invalid %s environment variable: %w", v.key, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("%s must not be negative, got %d", v.key, n)
		}
		*v.dst = n
	}

	if spec := get("STREAK_CHECK_CRON"); spec != "" {
		cfg.Jobs.StreakCheckCron = spec
	}

	return cfg, nil
}

func validateR2(c R2Config) error {
	fields := []string{c.AccountID, c.AccessKeyID, c.SecretAccessKey, c.BucketName, c.PublicBaseURL}
	set := 0
	for _, f := range fields {
		if f != "" {
			set++
		}
	}
	if set != 0 && set != len(fields) {
		return errors.New("incomplete R2 configuration: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none")
	}
	return nil
}

func intOrDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
