package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	NATS     NATSConfig // board event fan-out ข้าม instance
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	Board    BoardConfig
}

// RedisConfig สำหรับ board snapshot cache
type RedisConfig struct {
	Enabled  bool
	URL      string // redis://localhost:6379
	Password string
	DB       int
}

type AppConfig struct {
	Name        string
	Port        string
	Env         string
	CORSOrigins string // comma-separated, "*" = any
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NATSConfig configuration สำหรับ NATS (core pub/sub)
type NATSConfig struct {
	Enabled bool
	URL     string // nats://localhost:4222
}

// JWTConfig ใช้ verify token ที่ออกโดย auth service ภายนอก
type JWTConfig struct {
	Secret string
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string // logs/app.log
	MaxSize    int    // MB
	MaxBackups int    // จำนวน backup files
	MaxAge     int    // วัน
	Compress   bool   // บีบอัด backup
}

// BoardConfig ค่าของ board
type BoardConfig struct {
	HeartbeatCron string        // cron ของ ws ping job
	CacheTTL      time.Duration // อายุ board snapshot ใน redis
	WSSendBuffer  int           // queue ต่อ ws client
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// ไม่ error ถ้าไม่มี .env file (ใช้ environment variables แทน)
	}

	logMaxSize, _ := strconv.Atoi(getEnv("LOG_MAX_SIZE", "100"))
	logMaxBackups, _ := strconv.Atoi(getEnv("LOG_MAX_BACKUPS", "5"))
	logMaxAge, _ := strconv.Atoi(getEnv("LOG_MAX_AGE", "30"))
	logCompress := getEnv("LOG_COMPRESS", "true") == "true"

	dbMaxOpen, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	dbMaxIdle, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))
	dbLifetime := getDuration("DB_CONN_MAX_LIFETIME", time.Hour)

	// Redis config
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	wsSendBuffer, _ := strconv.Atoi(getEnv("BOARD_WS_SEND_BUFFER", "64"))

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Task Board"),
			Port:        getEnv("APP_PORT", "8080"),
			Env:         getEnv("APP_ENV", "development"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "taskboard"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    dbMaxOpen,
			MaxIdleConns:    dbMaxIdle,
			ConnMaxLifetime: dbLifetime,
		},
		NATS: NATSConfig{
			Enabled: getEnv("NATS_ENABLED", "true") == "true",
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "both"),
			FilePath:   getEnv("LOG_FILE", "logs/app.log"),
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAge,
			Compress:   logCompress,
		},
		Board: BoardConfig{
			HeartbeatCron: getEnv("BOARD_HEARTBEAT_CRON", "* * * * *"),
			CacheTTL:      getDuration("BOARD_CACHE_TTL", 30*time.Second),
			WSSendBuffer:  wsSendBuffer,
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getDuration อ่าน duration แบบ "30s", "1h"; ค่าผิดใช้ default
func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

// CORSOriginList แปลง comma-separated origins เป็น slice
func (c *AppConfig) CORSOriginList() []string {
	var origins []string
	for _, p := range strings.Split(c.CORSOrigins, ",") {
		if o := strings.TrimSpace(p); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsDevelopment ตรวจสอบว่าเป็น development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction ตรวจสอบว่าเป็น production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
