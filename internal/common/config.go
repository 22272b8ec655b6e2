package common

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	PDFText PDFTextConfig `mapstructure:"pdftext"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Jobs    JobsConfig    `mapstructure:"jobs"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// PDFTextConfig holds text-acquisition settings.
type PDFTextConfig struct {
	Pdftotext    string `mapstructure:"pdftotext"`
	Pdftoppm     string `mapstructure:"pdftoppm"`
	Pdfinfo      string `mapstructure:"pdfinfo"`
	Tesseract    string `mapstructure:"tesseract"`
	Lang         string `mapstructure:"lang"`
	FallbackLang string `mapstructure:"fallback_lang"`
	DPI          int    `mapstructure:"dpi"`
	MaxPages     int    `mapstructure:"max_pages"`
}

// LLMConfig holds generation settings.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// JobsConfig holds extraction-job history settings.
type JobsConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoadConfig reads configuration from environment variables with the
// POLICYSCAN_ prefix (e.g. POLICYSCAN_LLM_API_KEY).
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POLICYSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.max_upload_mb", 25)

	// Text acquisition defaults
	v.SetDefault("pdftext.pdftotext", "pdftotext")
	v.SetDefault("pdftext.pdftoppm", "pdftoppm")
	v.SetDefault("pdftext.pdfinfo", "pdfinfo")
	v.SetDefault("pdftext.tesseract", "tesseract")
	v.SetDefault("pdftext.lang", "chi_sim+eng")
	v.SetDefault("pdftext.fallback_lang", "eng")
	v.SetDefault("pdftext.dpi", 300)
	v.SetDefault("pdftext.max_pages", 0)

	// LLM defaults
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout", "90s")

	// Job store defaults
	v.SetDefault("jobs.db_path", "./policyscan-jobs.db")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, WrapError(err, "unmarshal config")
	}
	return &cfg, nil
}

// Validate checks the loaded configuration for required values.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "POLICYSCAN_LLM_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "POLICYSCAN_SERVER_ADDR is required", ErrInvalidInput)
	}
	return nil
}
