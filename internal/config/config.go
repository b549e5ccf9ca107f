package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ProviderSettings holds the credentials and budgets for one external
// listing provider. An empty credential disables the adapter at startup
// instead of erroring.
type ProviderSettings struct {
	AppID             string        `yaml:"app_id"`
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout" default:"12s"`
	MaxRetries        int           `yaml:"max_retries" default:"3"`
	RequestsPerMinute int           `yaml:"requests_per_minute" default:"25"`
	RequestsPerDay    int           `yaml:"requests_per_day" default:"1000"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	Providers struct {
		Adzuna   ProviderSettings `yaml:"adzuna"`
		JSearch  ProviderSettings `yaml:"jsearch"`
		Jooble   ProviderSettings `yaml:"jooble"`
		Remotive ProviderSettings `yaml:"remotive"`
	} `yaml:"providers"`

	Aggregator struct {
		FallbackFloor         int           `yaml:"fallback_floor" default:"20"`
		MaxSecondaryCountries int           `yaml:"max_secondary_countries" default:"1"`
		MaxConcurrentFetches  int           `yaml:"max_concurrent_fetches" default:"8"`
		DispatchPerSecond     float64       `yaml:"dispatch_per_second" default:"4"`
		RateLimitWait         time.Duration `yaml:"rate_limit_wait" default:"2s"`
	} `yaml:"aggregator"`

	Cache struct {
		Backend string        `yaml:"backend" default:"redis"` // redis or memory
		TTL     time.Duration `yaml:"ttl" default:"3m"`
	} `yaml:"cache"`

	Upsert struct {
		Concurrency int `yaml:"concurrency" default:"10"`
	} `yaml:"upsert"`

	Scheduler struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		Interval        time.Duration `yaml:"interval" default:"6h"`
		Queries         []string      `yaml:"queries"`
		Countries       []string      `yaml:"countries"`
		MaxJobsPerQuery int           `yaml:"max_jobs_per_query" default:"200"`
		PagesPerQuery   int           `yaml:"pages_per_query" default:"2"`
		PageDelay       time.Duration `yaml:"page_delay" default:"300ms"`
		StaleAfter      time.Duration `yaml:"stale_after" default:"720h"`
	} `yaml:"scheduler"`

	Webhook struct {
		URL        string        `yaml:"url"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
	} `yaml:"webhook"`

	Database struct {
		URL      string        `yaml:"url"`
		MaxConns int           `yaml:"max_conns" default:"10"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"database"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Providers.Adzuna = defaultProviderSettings("https://api.adzuna.com/v1/api/jobs", 25, 1000)
	config.Providers.JSearch = defaultProviderSettings("https://jsearch.p.rapidapi.com", 10, 500)
	config.Providers.Jooble = defaultProviderSettings("https://jooble.org/api", 10, 500)
	config.Providers.Remotive = defaultProviderSettings("https://remotive.com/api", 10, 500)

	config.Aggregator.FallbackFloor = 20
	config.Aggregator.MaxSecondaryCountries = 1
	config.Aggregator.MaxConcurrentFetches = 8
	config.Aggregator.DispatchPerSecond = 4
	config.Aggregator.RateLimitWait = 2 * time.Second

	config.Cache.Backend = "redis"
	config.Cache.TTL = 3 * time.Minute

	config.Upsert.Concurrency = 10

	config.Scheduler.Enabled = true
	config.Scheduler.Interval = 6 * time.Hour
	config.Scheduler.Queries = []string{"software engineer", "data analyst", "product manager"}
	config.Scheduler.Countries = []string{"IN", "US", "GB", "AE"}
	config.Scheduler.MaxJobsPerQuery = 200
	config.Scheduler.PagesPerQuery = 2
	config.Scheduler.PageDelay = 300 * time.Millisecond
	config.Scheduler.StaleAfter = 30 * 24 * time.Hour

	config.Webhook.Timeout = 10 * time.Second
	config.Webhook.MaxRetries = 3

	config.Database.MaxConns = 10
	config.Database.Timeout = 5 * time.Second

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

func defaultProviderSettings(baseURL string, perMinute, perDay int) ProviderSettings {
	return ProviderSettings{
		BaseURL:           baseURL,
		Timeout:           12 * time.Second,
		MaxRetries:        3,
		RequestsPerMinute: perMinute,
		RequestsPerDay:    perDay,
	}
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if appID := os.Getenv("ADZUNA_APP_ID"); appID != "" {
		c.Providers.Adzuna.AppID = appID
	}

	if appKey := os.Getenv("ADZUNA_APP_KEY"); appKey != "" {
		c.Providers.Adzuna.APIKey = appKey
	}

	// RAPIDAPI_KEY doubles as the JSearch key; JSEARCH_API_KEY wins if both are set
	if apiKey := os.Getenv("RAPIDAPI_KEY"); apiKey != "" {
		c.Providers.JSearch.APIKey = apiKey
	}

	if apiKey := os.Getenv("JSEARCH_API_KEY"); apiKey != "" {
		c.Providers.JSearch.APIKey = apiKey
	}

	if apiKey := os.Getenv("JOOBLE_API_KEY"); apiKey != "" {
		c.Providers.Jooble.APIKey = apiKey
	}

	if webhookURL := os.Getenv("WEBHOOK_URL"); webhookURL != "" {
		c.Webhook.URL = webhookURL
	}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		c.Database.URL = databaseURL
	}

	if maxConns := os.Getenv("DATABASE_MAX_CONNS"); maxConns != "" {
		if conns, err := strconv.Atoi(maxConns); err == nil {
			c.Database.MaxConns = conns
		}
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if cacheBackend := os.Getenv("CACHE_BACKEND"); cacheBackend != "" {
		c.Cache.Backend = cacheBackend
	}

	if cacheTTL := os.Getenv("CACHE_TTL"); cacheTTL != "" {
		if ttl, err := time.ParseDuration(cacheTTL); err == nil {
			c.Cache.TTL = ttl
		}
	}

	if floor := os.Getenv("FALLBACK_FLOOR"); floor != "" {
		if f, err := strconv.Atoi(floor); err == nil {
			c.Aggregator.FallbackFloor = f
		}
	}

	if concurrency := os.Getenv("UPSERT_CONCURRENCY"); concurrency != "" {
		if n, err := strconv.Atoi(concurrency); err == nil && n > 0 {
			c.Upsert.Concurrency = n
		}
	}

	if enabled := os.Getenv("SCHEDULER_ENABLED"); enabled != "" {
		c.Scheduler.Enabled = enabled == "true" || enabled == "1"
	}

	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			c.Scheduler.Interval = d
		}
	}

	if queries := os.Getenv("SYNC_QUERIES"); queries != "" {
		c.Scheduler.Queries = splitAndTrim(queries)
	}

	if countries := os.Getenv("SYNC_COUNTRIES"); countries != "" {
		c.Scheduler.Countries = splitAndTrim(countries)
	}
}

// splitAndTrim splits a comma-separated env value into a clean slice
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
