package config

const (
	defaultOutputDir        = "~/.local/share/scribe/output"
	defaultLogDir           = "~/.local/share/scribe/logs"
	defaultAPIBind          = "127.0.0.1:7317"
	defaultMistralBaseURL   = "https://api.mistral.ai"
	defaultMistralModel     = "mistral-ocr-latest"
	defaultMistralTimeout   = 120
	defaultIncludeImages    = true
	defaultConcurrency      = 4
	defaultMaxAttempts      = 3
	defaultRetryBaseSeconds = 1
	defaultRetryMaxSeconds  = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Mistral: Mistral{
			BaseURL:        defaultMistralBaseURL,
			Model:          defaultMistralModel,
			TimeoutSeconds: defaultMistralTimeout,
			IncludeImages:  defaultIncludeImages,
		},
		Batch: Batch{
			Concurrency:      defaultConcurrency,
			MaxAttempts:      defaultMaxAttempts,
			RetryBaseSeconds: defaultRetryBaseSeconds,
			RetryMaxSeconds:  defaultRetryMaxSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
