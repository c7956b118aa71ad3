package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	Upload    UploadConfig
	Data      DataConfig
	Admin     AdminConfig
	Session   SessionConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

// UploadConfig locates the public artifact tree and bounds submissions.
type UploadConfig struct {
	Root              string
	URLPrefix         string
	TempDir           string
	MaxFileSizeBytes  int64
	MaxFiles          int
	MultipartMemory   int64
	TempTTL           time.Duration
	TempSweepInterval time.Duration
}

// DataConfig names the JSON documents backing records and journals.
type DataConfig struct {
	Dir         string
	RecordsFile string
	ChatFile    string
	LogsFile    string
}

// AdminConfig holds the single admin credential.
type AdminConfig struct {
	PasswordHash string
	// Password is a development fallback; it is hashed at boot and never compared in clear.
	Password string
}

// SessionConfig drives the admin session store.
type SessionConfig struct {
	Backend       string
	TTL           time.Duration
	CookieName    string
	SweepInterval time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SMTPConfig configures the operator notification mailbox.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSL      bool
	From     string
	To       string
}

// Enabled reports whether enough settings exist to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.To != ""
}

// NotifyConfig tunes the asynchronous notification dispatcher.
type NotifyConfig struct {
	Workers         int
	Retries         int
	RetryDelay      time.Duration
	BreakerTimeout  time.Duration
	BreakerFailures uint32
}

// RateLimitConfig bounds public write endpoints per client IP.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level          string
	Format         string
	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	maxFileSize := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxFileSize <= 0 {
		maxFileSize = 20 * 1024 * 1024
	}
	maxFiles := v.GetInt("UPLOAD_MAX_FILES")
	if maxFiles <= 0 {
		maxFiles = 20
	}
	multipartMemory := v.GetInt64("UPLOAD_MULTIPART_MEMORY")
	if multipartMemory <= 0 {
		multipartMemory = 8 << 20
	}
	cfg.Upload = UploadConfig{
		Root:              v.GetString("UPLOAD_ROOT"),
		URLPrefix:         normalizePrefix(v.GetString("UPLOAD_URL_PREFIX")),
		TempDir:           v.GetString("UPLOAD_TEMP_DIR"),
		MaxFileSizeBytes:  maxFileSize,
		MaxFiles:          maxFiles,
		MultipartMemory:   multipartMemory,
		TempTTL:           parseDuration(v.GetString("UPLOAD_TEMP_TTL"), time.Hour),
		TempSweepInterval: parseDuration(v.GetString("UPLOAD_TEMP_SWEEP_INTERVAL"), 30*time.Minute),
	}

	cfg.Data = DataConfig{
		Dir:         v.GetString("DATA_DIR"),
		RecordsFile: v.GetString("RECORDS_FILE"),
		ChatFile:    v.GetString("CHAT_FILE"),
		LogsFile:    v.GetString("LOGS_FILE"),
	}

	cfg.Admin = AdminConfig{
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		Password:     v.GetString("ADMIN_PASSWORD"),
	}

	cfg.Session = SessionConfig{
		Backend:       strings.ToLower(strings.TrimSpace(v.GetString("SESSION_BACKEND"))),
		TTL:           parseDuration(v.GetString("SESSION_TTL"), time.Hour),
		CookieName:    v.GetString("SESSION_COOKIE_NAME"),
		SweepInterval: parseDuration(v.GetString("SESSION_SWEEP_INTERVAL"), 10*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		User:     v.GetString("SMTP_USER"),
		Password: v.GetString("SMTP_PASSWORD"),
		SSL:      v.GetBool("SMTP_SSL"),
		From:     v.GetString("SMTP_FROM"),
		To:       v.GetString("SMTP_TO"),
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	if cfg.SMTP.To == "" {
		cfg.SMTP.To = cfg.SMTP.User
	}

	cfg.Notify = NotifyConfig{
		Workers:         v.GetInt("NOTIFY_WORKERS"),
		Retries:         v.GetInt("NOTIFY_RETRIES"),
		RetryDelay:      parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), 5*time.Second),
		BreakerTimeout:  parseDuration(v.GetString("NOTIFY_BREAKER_TIMEOUT"), time.Minute),
		BreakerFailures: v.GetUint32("NOTIFY_BREAKER_FAILURES"),
	}

	cfg.RateLimit = RateLimitConfig{
		RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		Burst: v.GetInt("RATE_LIMIT_BURST"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:          v.GetString("LOG_LEVEL"),
		Format:         v.GetString("LOG_FORMAT"),
		File:           v.GetString("LOG_FILE"),
		FileMaxSizeMB:  v.GetInt("LOG_FILE_MAX_SIZE_MB"),
		FileMaxBackups: v.GetInt("LOG_FILE_MAX_BACKUPS"),
		FileMaxAgeDays: v.GetInt("LOG_FILE_MAX_AGE_DAYS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)

	v.SetDefault("UPLOAD_ROOT", "./Les synthèses des invités")
	v.SetDefault("UPLOAD_URL_PREFIX", "/Les synthèses des invités")
	v.SetDefault("UPLOAD_TEMP_DIR", "./temp")
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("UPLOAD_MAX_FILES", 20)
	v.SetDefault("UPLOAD_MULTIPART_MEMORY", 8<<20)
	v.SetDefault("UPLOAD_TEMP_TTL", "1h")
	v.SetDefault("UPLOAD_TEMP_SWEEP_INTERVAL", "30m")

	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("RECORDS_FILE", "fichiers.json")
	v.SetDefault("CHAT_FILE", "chat.json")
	v.SetDefault("LOGS_FILE", "logs.json")

	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("SESSION_BACKEND", SessionBackendMemory)
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("SESSION_COOKIE_NAME", "adminToken")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "10m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SSL", true)
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMTP_TO", "")

	v.SetDefault("NOTIFY_WORKERS", 1)
	v.SetDefault("NOTIFY_RETRIES", 2)
	v.SetDefault("NOTIFY_RETRY_DELAY", "5s")
	v.SetDefault("NOTIFY_BREAKER_TIMEOUT", "1m")
	v.SetDefault("NOTIFY_BREAKER_FAILURES", 3)

	v.SetDefault("RATE_LIMIT_RPS", 2)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_FILE_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_FILE_MAX_BACKUPS", 5)
	v.SetDefault("LOG_FILE_MAX_AGE_DAYS", 30)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func normalizePrefix(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "/uploads"
	}
	raw = "/" + strings.Trim(raw, "/")
	return raw
}

// viper reports a missing explicit config file as a plain fs error, not ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
