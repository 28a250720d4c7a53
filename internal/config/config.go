package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	AppName           = "SmartMusic"
	DefaultDocKey     = "smart_music_db_offline_v2"
	DefaultMediaAddr  = "localhost:8081"
	DefaultPoll       = 5 * time.Second
	DefaultBlobMaxMB  = 50
	DefaultVolumeLvl  = 0.8
	DefaultAdminEmail = "admin@smartmusic.local"
)

type Config struct {
	// Storage
	DatabaseDSN  string `env:"DATABASE_URI"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	DocKey       string `env:"SMART_MUSIC_DOC_KEY"`

	// Accounts & session
	AuthSecret    string        `env:"AUTH_SECRET"`
	AdminEmail    string        `env:"SMART_MUSIC_ADMIN_EMAIL"`
	AdminPassword string        `env:"SMART_MUSIC_ADMIN_PASSWORD"`
	PollInterval  time.Duration `env:"SMART_MUSIC_POLL_INTERVAL"`
	SessionFile   string        `env:"SESSION_FILE"`

	// Media
	MediaAddr     string  `env:"MEDIA_ADDR"`
	BlobMaxSizeMB int     `env:"BLOB_MAX_MB"`
	DefaultVolume float64 `env:"DEFAULT_VOLUME"`

	Version bool `env:"-"` // show version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги перекрывают значения из env
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (путь SQLite или postgres://)")
	flag.StringVar(&cfg.ClientDBPath, "db", cfg.ClientDBPath, "путь к локальной SQLite БД")
	flag.StringVar(&cfg.DocKey, "doc-key", cfg.DocKey, "ключ документа метаданных")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи токена сессии")
	flag.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "интервал опроса непрочитанных сообщений")
	flag.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "path to session token file")
	flag.StringVar(&cfg.MediaAddr, "media-addr", cfg.MediaAddr, "address of the local media server (host:port)")
	flag.IntVar(&cfg.BlobMaxSizeMB, "blob-max-mb", cfg.BlobMaxSizeMB, "max media upload size, MB")
	flag.Float64Var(&cfg.DefaultVolume, "volume", cfg.DefaultVolume, "initial playback volume 0..1")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DocKey == "" {
		cfg.DocKey = DefaultDocKey
	}
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = DefaultAdminEmail
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPoll
	}
	if cfg.BlobMaxSizeMB <= 0 {
		cfg.BlobMaxSizeMB = DefaultBlobMaxMB
	}
	if cfg.DefaultVolume <= 0 || cfg.DefaultVolume > 1 {
		cfg.DefaultVolume = DefaultVolumeLvl
	}
	// MediaAddr: только "address:port" (без схемы и пути), иначе дефолт
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.MediaAddr) {
		cfg.MediaAddr = DefaultMediaAddr
	}

	dir := Dir()
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(dir, "library.db")
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = filepath.Join(dir, "session")
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = cfg.ClientDBPath
	}
}

// Dir - каталог данных приложения в пользовательском конфиге (или в домашнем каталоге).
func Dir() string {
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".smartmusic")
}
