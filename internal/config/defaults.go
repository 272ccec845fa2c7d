package config

const (
	defaultLogosDir            = "~/Logos"
	defaultStateDir            = "~/.local/share/logonorm"
	defaultLogDir              = "~/.local/share/logonorm/logs"
	defaultCatalogBaseURL      = "https://api.sportsgameodds.com/v2"
	defaultCatalogTimeout      = 30
	defaultCatalogRPM          = 60
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "google/gemini-2.0-flash-001"
	defaultLLMReferer          = "https://github.com/logonorm/logonorm"
	defaultLLMTitle            = "logonorm matcher"
	defaultLLMTimeoutSeconds   = 60
	defaultLLMRetryAttempts    = 3
	defaultLLMRPM              = 30
	defaultBatchSize           = 20
	defaultConfidenceThreshold = 0.90
	defaultMaxEntities         = 600
	defaultNtfyTimeout         = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// DefaultSports mirrors the directory layout the logo downloader produces.
// College logos are matched against the football catalog.
func DefaultSports() []Sport {
	return []Sport{
		{Dir: "Baseball", SportID: "BASEBALL"},
		{Dir: "Basketball", SportID: "BASKETBALL"},
		{Dir: "Football", SportID: "FOOTBALL"},
		{Dir: "Hockey", SportID: "HOCKEY"},
		{Dir: "Soccer", SportID: "SOCCER"},
		{Dir: "Tennis", SportID: "TENNIS"},
		{Dir: "Mixed Martial Arts", SportID: "MMA"},
		{Dir: "Boxing", SportID: "BOXING"},
		{Dir: "College", SportID: "FOOTBALL"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogosDir: defaultLogosDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:           defaultCatalogBaseURL,
			TimeoutSeconds:    defaultCatalogTimeout,
			RequestsPerMinute: defaultCatalogRPM,
		},
		LLM: LLM{
			BaseURL:           defaultLLMBaseURL,
			Model:             defaultLLMModel,
			Referer:           defaultLLMReferer,
			Title:             defaultLLMTitle,
			TimeoutSeconds:    defaultLLMTimeoutSeconds,
			RetryAttempts:     defaultLLMRetryAttempts,
			RequestsPerMinute: defaultLLMRPM,
		},
		Matching: Matching{
			BatchSize:           defaultBatchSize,
			ConfidenceThreshold: defaultConfidenceThreshold,
			MaxEntities:         defaultMaxEntities,
		},
		Sports: DefaultSports(),
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
