package config

import "fmt"

// Validate checks that configuration sections used at runtime carry their
// required fields. Sections for disabled features are not checked, so a
// local setup without YouTube or trending stays valid.
func (c *Config) Validate() error {
	if c.Database.Driver == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("database: host is required for postgres")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database: name is required for postgres")
		}
	}

	if c.Instagram.AppSecret == "" {
		return fmt.Errorf("instagram: app_secret is required (set INSTAGRAM_APP_SECRET)")
	}
	if c.Instagram.MaxPollAttempts <= 0 {
		return fmt.Errorf("instagram: max_poll_attempts must be positive")
	}

	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram: bot_token is required (set TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram: chat_id is required (set TELEGRAM_CHAT_ID)")
	}

	if c.Generator.APIKey == "" {
		return fmt.Errorf("generator: api_key is required (set OPENAI_API_KEY)")
	}

	if c.Renderer.BaseURL == "" {
		return fmt.Errorf("renderer: base_url is required (set RENDERER_BASE_URL)")
	}

	if c.YouTube.Enabled {
		if c.YouTube.ClientID == "" || c.YouTube.ClientSecret == "" {
			return fmt.Errorf("youtube: client_id and client_secret are required when enabled")
		}
		if c.YouTube.RefreshToken == "" {
			return fmt.Errorf("youtube: refresh_token is required when enabled")
		}
	}

	if c.Trending.Enabled && len(c.Trending.Subreddits) == 0 {
		return fmt.Errorf("trending: at least one subreddit is required when enabled")
	}

	return nil
}
