package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage engines.
const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
	EngineMySQL    = "mysql"
)

type Config struct {
	Bot       BotConfig       `toml:"bot"`
	Database  DatabaseConfig  `toml:"database"`
	HTTP      HTTPConfig      `toml:"http"`
	KeepAlive KeepAliveConfig `toml:"keepalive"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
}

type BotConfig struct {
	Token           string  `toml:"token"`
	AdminIDs        []int64 `toml:"admin_ids"`
	DonationContact string  `toml:"donation_contact"`
	// Channel the free-gift case is gated on; 0 disables the gate.
	GiftChannelID int64 `toml:"gift_channel_id"`
	TestMode      bool  `toml:"test_mode"` // disables the autosave ticker
}

type DatabaseConfig struct {
	Engine          string        `toml:"engine"` // memory, postgres, mysql
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type HTTPConfig struct {
	Port int `toml:"port"`
}

type KeepAliveConfig struct {
	URL      string        `toml:"url"`
	Interval time.Duration `toml:"interval"`
}

type DataConfig struct {
	ItemsFile  string `toml:"items_file"`
	ImagesFile string `toml:"images_file"`
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the TOML file over defaults, then applies environment overrides.
// A missing file is not an error: env-only deployments are the common case.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is not configured (TELEGRAM_TOKEN)")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Bot: BotConfig{
			DonationContact: "@imfromcrimecorebitches",
		},
		Database: DatabaseConfig{
			Engine:          EngineMemory,
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		HTTP: HTTPConfig{
			Port: 3001,
		},
		KeepAlive: KeepAliveConfig{
			Interval: 5 * time.Minute,
		},
		Data: DataConfig{
			ItemsFile:  "data/items.yaml",
			ImagesFile: "data/images.yaml",
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func applyEnv(cfg *Config) {
	if v := firstEnv("TELEGRAM_TOKEN", "TOKEN", "BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		cfg.Bot.AdminIDs = nil
		for _, part := range strings.Split(v, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				cfg.Bot.AdminIDs = append(cfg.Bot.AdminIDs, id)
			}
		}
	}
	if v := os.Getenv("DONATION_CONTACT"); v != "" {
		cfg.Bot.DonationContact = v
	}
	if v := os.Getenv("GIFT_CHANNEL_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Bot.GiftChannelID = id
		}
	}

	// Postgres wins over MySQL when both are present.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.Engine = EnginePostgres
		cfg.Database.DSN = v
		if os.Getenv("DB_SSL") == "true" && !strings.Contains(v, "sslmode=") {
			sep := "?"
			if strings.Contains(v, "?") {
				sep = "&"
			}
			cfg.Database.DSN = v + sep + "sslmode=require"
		}
	} else if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Engine = EngineMySQL
		cfg.Database.DSN = fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, os.Getenv("DB_NAME"))
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = port
		}
	}
	if v := firstEnv("KEEPALIVE_URL", "RENDER_EXTERNAL_URL", "PING_URL"); v != "" {
		cfg.KeepAlive.URL = v
	}
	if v := os.Getenv("KEEPALIVE_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.KeepAlive.Interval = time.Duration(ms) * time.Millisecond
		}
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsAdmin reports whether the user may run admin commands.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Bot.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
