package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// SiteConfig drives the tracking and admin API.
type SiteConfig struct {
	Addr            string
	AdminToken      string
	MailerURL       string
	MailerTimeout   time.Duration
	TrackingPrefix  string
	OverdueSchedule string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// MailerConfig drives the email notification service.
type MailerConfig struct {
	Addr           string
	ContactAddress string
	SiteURL        string
	SupportEmail   string
	ProbeSchedule  string
	SMTP           SMTPConfig
}

type Config struct {
	LogsDirectory string
	Database      DatabaseConfig
	Site          SiteConfig
	Mailer        MailerConfig
}

// LoadConfig reads .env into the environment and layers it over an optional config file.
// Environment values win.
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_driver", "postgres")
	v.SetDefault("database_max_open_conns", 10)
	v.SetDefault("site_addr", ":8080")
	v.SetDefault("mailer_addr", ":3001")
	v.SetDefault("mailer_timeout", "20s")
	v.SetDefault("tracking_prefix", "SL")
	v.SetDefault("overdue_schedule", "0 * * * *")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_probe_schedule", "*/5 * * * *")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		LogsDirectory: v.GetString("logs_directory"),
		Database: DatabaseConfig{
			Driver:       v.GetString("database_driver"),
			DSN:          v.GetString("database_dsn"),
			MaxOpenConns: v.GetInt("database_max_open_conns"),
		},
		Site: SiteConfig{
			Addr:            v.GetString("site_addr"),
			AdminToken:      v.GetString("admin_token"),
			MailerURL:       v.GetString("mailer_url"),
			MailerTimeout:   v.GetDuration("mailer_timeout"),
			TrackingPrefix:  v.GetString("tracking_prefix"),
			OverdueSchedule: v.GetString("overdue_schedule"),
		},
		Mailer: MailerConfig{
			Addr:           v.GetString("mailer_addr"),
			ContactAddress: v.GetString("contact_email"),
			SiteURL:        strings.TrimRight(v.GetString("site_url"), "/"),
			SupportEmail:   v.GetString("support_email"),
			ProbeSchedule:  v.GetString("smtp_probe_schedule"),
			SMTP: SMTPConfig{
				Host:     v.GetString("smtp_host"),
				Port:     v.GetInt("smtp_port"),
				User:     v.GetString("smtp_user"),
				Password: v.GetString("smtp_password"),
				From:     v.GetString("smtp_from"),
			},
		},
	}
}

// ValidateSite checks the settings the API server cannot start without.
func (c *Config) ValidateSite() error {
	return requireAll(map[string]string{
		"DATABASE_DSN": c.Database.DSN,
		"ADMIN_TOKEN":  c.Site.AdminToken,
	})
}

// ValidateMailer checks the settings the mail transport cannot initialise without.
func (c *Config) ValidateMailer() error {
	m := c.Mailer
	if err := requireAll(map[string]string{
		"SMTP_HOST":     m.SMTP.Host,
		"SMTP_USER":     m.SMTP.User,
		"SMTP_PASSWORD": m.SMTP.Password,
		"SMTP_FROM":     m.SMTP.From,
		"CONTACT_EMAIL": m.ContactAddress,
		"SITE_URL":      m.SiteURL,
	}); err != nil {
		return err
	}
	if m.SMTP.Port <= 0 || m.SMTP.Port > 65535 {
		return fmt.Errorf("invalid SMTP_PORT %d", m.SMTP.Port)
	}
	return nil
}

func requireAll(values map[string]string) error {
	var missing []string
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
}
