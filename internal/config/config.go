package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Ollama    OllamaConfig    `yaml:"ollama" mapstructure:"ollama"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Whisper   WhisperConfig   `yaml:"whisper" mapstructure:"whisper"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	CORSOrigins    []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// LLMConfig selects the completion backend.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// OllamaConfig holds settings for the local Ollama completion endpoint.
type OllamaConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Model          string  `yaml:"model" mapstructure:"model"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// AnthropicConfig holds Anthropic API settings for the alternate backend.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// WhisperConfig configures the speech-to-text boundary.
type WhisperConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	BinPath       string `yaml:"bin_path" mapstructure:"bin_path"`
	ModelPath     string `yaml:"model_path" mapstructure:"model_path"`
	ServerBaseURL string `yaml:"server_base_url" mapstructure:"server_base_url"`
	Language      string `yaml:"language" mapstructure:"language"`
}

// GeneratorConfig configures MCQ generation behavior.
type GeneratorConfig struct {
	DefaultQuestions  int  `yaml:"default_questions" mapstructure:"default_questions"`
	MaxQuestions      int  `yaml:"max_questions" mapstructure:"max_questions"`
	QuestionsPerChunk int  `yaml:"questions_per_chunk" mapstructure:"questions_per_chunk"`
	ChunkAttempts     int  `yaml:"chunk_attempts" mapstructure:"chunk_attempts"`
	PassRetries       int  `yaml:"pass_retries" mapstructure:"pass_retries"`
	PassBackoffSecs   int  `yaml:"pass_backoff_secs" mapstructure:"pass_backoff_secs"`
	MaxModelTokens    int  `yaml:"max_model_tokens" mapstructure:"max_model_tokens"`
	KeepAllQuestions  bool `yaml:"keep_all_questions" mapstructure:"keep_all_questions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("QUIZFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", int64(512<<20))
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "gemma:2b")
	v.SetDefault("ollama.timeout_secs", 60)
	v.SetDefault("ollama.requests_per_sec", 0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("whisper.provider", "local")
	v.SetDefault("whisper.bin_path", "whisper-cli")
	v.SetDefault("whisper.model_path", "models/ggml-tiny.bin")
	v.SetDefault("whisper.server_base_url", "http://localhost:8178")
	v.SetDefault("generator.default_questions", 3)
	v.SetDefault("generator.max_questions", 10)
	v.SetDefault("generator.questions_per_chunk", 1)
	v.SetDefault("generator.chunk_attempts", 2)
	v.SetDefault("generator.pass_retries", 2)
	v.SetDefault("generator.pass_backoff_secs", 1)
	v.SetDefault("generator.max_model_tokens", 4000)
	v.SetDefault("generator.keep_all_questions", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that required settings are present for the given run mode
// ("serve", "generate", or "transcribe"). Collected problems are reported
// together so a misconfigured deployment fails with the full list.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkLLM := func() {
		switch c.LLM.Provider {
		case "ollama", "":
			if c.Ollama.BaseURL == "" {
				problems = append(problems, "ollama.base_url is required")
			}
			if c.Ollama.Model == "" {
				problems = append(problems, "ollama.model is required")
			}
		case "anthropic":
			if c.Anthropic.Key == "" {
				problems = append(problems, "anthropic.key is required")
			}
		default:
			problems = append(problems, "llm.provider must be ollama or anthropic")
		}
	}

	checkWhisper := func() {
		switch c.Whisper.Provider {
		case "local", "":
			if c.Whisper.ModelPath == "" {
				problems = append(problems, "whisper.model_path is required")
			}
		case "server":
			if c.Whisper.ServerBaseURL == "" {
				problems = append(problems, "whisper.server_base_url is required")
			}
		default:
			problems = append(problems, "whisper.provider must be local or server")
		}
	}

	checkGenerator := func() {
		if c.Generator.MaxQuestions < 1 {
			problems = append(problems, "generator.max_questions must be >= 1")
		}
		if c.Generator.ChunkAttempts < 1 {
			problems = append(problems, "generator.chunk_attempts must be >= 1")
		}
		if c.Generator.PassRetries < 0 {
			problems = append(problems, "generator.pass_retries must be >= 0")
		}
		if c.Generator.MaxModelTokens < 500 {
			problems = append(problems, "generator.max_model_tokens must be >= 500")
		}
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.MaxUploadBytes <= 0 {
			problems = append(problems, "server.max_upload_bytes must be > 0")
		}
		checkLLM()
		checkWhisper()
		checkGenerator()
	case "generate":
		checkLLM()
		checkGenerator()
	case "transcribe":
		checkWhisper()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
