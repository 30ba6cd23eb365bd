package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Instagram InstagramConfig `mapstructure:"instagram"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Renderer  RendererConfig  `mapstructure:"renderer"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Trending  TrendingConfig  `mapstructure:"trending"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
// Parameters: none.
// Returns:
//   - string: driver-specific DSN.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type StorageConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Bucket       string `mapstructure:"bucket"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	PublicURL    string `mapstructure:"public_url"`
}

type InstagramConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	AppID           string        `mapstructure:"app_id"`
	AppSecret       string        `mapstructure:"app_secret"`
	RefreshMargin   time.Duration `mapstructure:"refresh_margin"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts int           `mapstructure:"max_poll_attempts"`
}

type YouTubeConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	Category     string `mapstructure:"category"`
	Privacy      string `mapstructure:"privacy"`
}

type TelegramConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type GeneratorConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	SceneCount  int     `mapstructure:"scene_count"`
	PromptsFile string  `mapstructure:"prompts_file"`
}

type RendererConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxPollTime  time.Duration `mapstructure:"max_poll_time"`
	WorkDir      string        `mapstructure:"work_dir"`
	FFmpegPath   string        `mapstructure:"ffmpeg_path"`
	FFprobePath  string        `mapstructure:"ffprobe_path"`
}

type PipelineConfig struct {
	AutoPublish bool `mapstructure:"auto_publish"`
}

type TrendingConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Subreddits []string `mapstructure:"subreddits"`
	Limit      int      `mapstructure:"limit"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/pipeline.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.bucket", "reels")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("instagram.base_url", "https://graph.facebook.com/v19.0")
	v.SetDefault("instagram.refresh_margin", 7*24*time.Hour)
	v.SetDefault("instagram.poll_interval", 10*time.Second)
	v.SetDefault("instagram.max_poll_attempts", 30)
	v.SetDefault("youtube.enabled", false)
	v.SetDefault("youtube.category", "24")
	v.SetDefault("youtube.privacy", "public")
	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("generator.provider", "openai")
	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("generator.base_url", "https://api.openai.com/v1")
	v.SetDefault("generator.temperature", 0.8)
	v.SetDefault("generator.scene_count", 4)
	v.SetDefault("generator.prompts_file", "")
	v.SetDefault("renderer.base_url", "")
	v.SetDefault("renderer.model", "")
	v.SetDefault("renderer.poll_interval", 15*time.Second)
	v.SetDefault("renderer.max_poll_time", 15*time.Minute)
	v.SetDefault("renderer.work_dir", "./data/work")
	v.SetDefault("renderer.ffmpeg_path", "ffmpeg")
	v.SetDefault("renderer.ffprobe_path", "ffprobe")
	v.SetDefault("pipeline.auto_publish", true)
	v.SetDefault("trending.enabled", false)
	v.SetDefault("trending.subreddits", []string{})
	v.SetDefault("trending.limit", 10)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
	v.BindEnv("instagram.app_id", "INSTAGRAM_APP_ID")
	v.BindEnv("instagram.app_secret", "INSTAGRAM_APP_SECRET")
	v.BindEnv("youtube.client_id", "YOUTUBE_CLIENT_ID")
	v.BindEnv("youtube.client_secret", "YOUTUBE_CLIENT_SECRET")
	v.BindEnv("youtube.refresh_token", "YOUTUBE_REFRESH_TOKEN")
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	v.BindEnv("generator.api_key", "OPENAI_API_KEY")
	v.BindEnv("generator.base_url", "OPENAI_BASE_URL")
	v.BindEnv("renderer.base_url", "RENDERER_BASE_URL")
	v.BindEnv("renderer.api_key", "RENDERER_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
