package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Filename orders for rendered documents
const (
	FilenameCompanyFirst = "company_first"
	FilenameTitleFirst   = "title_first"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		Host            string        `yaml:"host" default:"127.0.0.1"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
		RequestTimeout  time.Duration `yaml:"request_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes" default:"2097152"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Scraper struct {
		UserAgent           string        `yaml:"user_agent"`
		HeadlessMode        bool          `yaml:"headless_mode" default:"true"`
		StealthMode         bool          `yaml:"stealth_mode" default:"true"`
		NavigationTimeout   time.Duration `yaml:"navigation_timeout" default:"30s"`
		IdleTimeout         time.Duration `yaml:"idle_timeout" default:"10s"`
		RenderGrace         time.Duration `yaml:"render_grace" default:"2s"`
		OverlayProbeTimeout time.Duration `yaml:"overlay_probe_timeout" default:"300ms"`
		ExpandTimeout       time.Duration `yaml:"expand_timeout" default:"500ms"`
		ConsentLabels       []string      `yaml:"consent_labels"`
		ListingPath         string        `yaml:"listing_path" default:"/jobs/view/"`
		ExpiredMarker       string        `yaml:"expired_marker" default:"expired"`
		RateLimit           int           `yaml:"rate_limit" default:"20"` // navigations per minute per host
	} `yaml:"scraper"`

	Browser struct {
		Bin        string `yaml:"bin"`
		ProfileDir string `yaml:"profile_dir" default:"~/.jobscribe-profile"`
		LoginURL   string `yaml:"login_url" default:"https://www.linkedin.com/login"`
		NoSandbox  bool   `yaml:"no_sandbox" default:"true"`
	} `yaml:"browser"`

	Batch struct {
		DelayMin    time.Duration `yaml:"delay_min" default:"2s"`
		DelayMax    time.Duration `yaml:"delay_max" default:"5s"`
		LogTailSize int           `yaml:"log_tail_size" default:"500"`
		MaxBatchAge time.Duration `yaml:"max_batch_age" default:"24h"`
	} `yaml:"batch"`

	Output struct {
		Dir            string `yaml:"dir" default:"./output"`
		DocumentDir    string `yaml:"document_dir"`
		CollectionFile string `yaml:"collection_file" default:"jobs.json"`
		FilenameOrder  string `yaml:"filename_order" default:"company_first"`
		LogoBlock      bool   `yaml:"logo_block" default:"true"`
	} `yaml:"output"`

	Storage struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`

	Export struct {
		Enabled bool `yaml:"enabled" default:"false"`
		Spaces  struct {
			Endpoint        string `yaml:"endpoint"`
			Region          string `yaml:"region" default:"ams3"`
			BucketName      string `yaml:"bucket_name"`
			BucketURL       string `yaml:"bucket_url"`
			CDNEndpoint     string `yaml:"cdn_endpoint"`
			AccessKeyID     string `yaml:"access_key_id"`
			AccessKeySecret string `yaml:"access_key_secret"`
			Prefix          string `yaml:"prefix" default:"jobscribe"`
			PathStyle       bool   `yaml:"path_style" default:"false"`
			PublicRead      bool   `yaml:"public_read" default:"false"`
		} `yaml:"spaces"`
	} `yaml:"export"`

	Dedup struct {
		Enabled   bool          `yaml:"enabled" default:"false"`
		TTL       time.Duration `yaml:"ttl" default:"24h"`
		KeyPrefix string        `yaml:"key_prefix" default:"jobscribe:seen"`
	} `yaml:"dedup"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"text"`

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

// Default returns a configuration populated with built-in defaults only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "127.0.0.1"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.RequestTimeout = 15 * time.Second
	config.Server.ShutdownTimeout = 10 * time.Second
	config.Server.MaxBodyBytes = 2 * 1024 * 1024

	config.Scraper.HeadlessMode = true
	config.Scraper.StealthMode = true
	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Scraper.NavigationTimeout = 30 * time.Second
	config.Scraper.IdleTimeout = 10 * time.Second
	config.Scraper.RenderGrace = 2 * time.Second
	config.Scraper.OverlayProbeTimeout = 300 * time.Millisecond
	config.Scraper.ExpandTimeout = 500 * time.Millisecond
	config.Scraper.ConsentLabels = []string{"Accept", "Accepteren"}
	config.Scraper.ListingPath = "/jobs/view/"
	config.Scraper.ExpiredMarker = "expired"
	config.Scraper.RateLimit = 20

	config.Browser.ProfileDir = "~/.jobscribe-profile"
	config.Browser.LoginURL = "https://www.linkedin.com/login"
	config.Browser.NoSandbox = true

	config.Batch.DelayMin = 2 * time.Second
	config.Batch.DelayMax = 5 * time.Second
	config.Batch.LogTailSize = 500
	config.Batch.MaxBatchAge = 24 * time.Hour

	config.Output.Dir = "./output"
	config.Output.CollectionFile = "jobs.json"
	config.Output.FilenameOrder = FilenameCompanyFirst
	config.Output.LogoBlock = true

	config.Export.Spaces.Region = "ams3"
	config.Export.Spaces.Prefix = "jobscribe"

	config.Dedup.TTL = 24 * time.Hour
	config.Dedup.KeyPrefix = "jobscribe:seen"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "text"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
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

	if headless := os.Getenv("JOBSCRIBE_HEADLESS"); headless != "" {
		c.Scraper.HeadlessMode = headless == "true" || headless == "1"
	}

	if userAgent := os.Getenv("JOBSCRIBE_USER_AGENT"); userAgent != "" {
		c.Scraper.UserAgent = userAgent
	}

	if timeout := os.Getenv("JOBSCRIBE_NAVIGATION_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Scraper.NavigationTimeout = d
		}
	}

	if timeout := os.Getenv("JOBSCRIBE_IDLE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Scraper.IdleTimeout = d
		}
	}

	if labels := os.Getenv("JOBSCRIBE_CONSENT_LABELS"); labels != "" {
		var parsed []string
		for _, label := range strings.Split(labels, ",") {
			if label = strings.TrimSpace(label); label != "" {
				parsed = append(parsed, label)
			}
		}
		if len(parsed) > 0 {
			c.Scraper.ConsentLabels = parsed
		}
	}

	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		c.Browser.Bin = bin
	}

	if profile := os.Getenv("JOBSCRIBE_PROFILE_DIR"); profile != "" {
		c.Browser.ProfileDir = profile
	}

	if delay := os.Getenv("JOBSCRIBE_DELAY_MIN"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			c.Batch.DelayMin = d
		}
	}

	if delay := os.Getenv("JOBSCRIBE_DELAY_MAX"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			c.Batch.DelayMax = d
		}
	}

	if dir := os.Getenv("JOBSCRIBE_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}

	if dir := os.Getenv("JOBSCRIBE_DOCUMENT_DIR"); dir != "" {
		c.Output.DocumentDir = dir
	}

	if order := os.Getenv("JOBSCRIBE_FILENAME_ORDER"); order != "" {
		c.Output.FilenameOrder = order
	}

	if sqlitePath := os.Getenv("JOBSCRIBE_SQLITE_PATH"); sqlitePath != "" {
		c.Storage.SQLitePath = sqlitePath
	}

	if dedup := os.Getenv("JOBSCRIBE_DEDUP_ENABLED"); dedup != "" {
		c.Dedup.Enabled = dedup == "true" || dedup == "1"
	}

	if ttl := os.Getenv("JOBSCRIBE_DEDUP_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.Dedup.TTL = d
		}
	}

	if export := os.Getenv("JOBSCRIBE_EXPORT_ENABLED"); export != "" {
		c.Export.Enabled = export == "true" || export == "1"
	}

	if endpoint := os.Getenv("BUCKET_ENDPOINT"); endpoint != "" {
		c.Export.Spaces.Endpoint = endpoint
	}

	if bucketName := os.Getenv("BUCKET_NAME"); bucketName != "" {
		c.Export.Spaces.BucketName = bucketName
	}

	if bucketURL := os.Getenv("BUCKET_URL"); bucketURL != "" {
		c.Export.Spaces.BucketURL = bucketURL
	}

	if cdnEndpoint := os.Getenv("BUCKET_CDN_ENDPOINT"); cdnEndpoint != "" {
		c.Export.Spaces.CDNEndpoint = cdnEndpoint
	}

	if accessKeyID := os.Getenv("BUCKET_ACCESS_KEY_ID"); accessKeyID != "" {
		c.Export.Spaces.AccessKeyID = accessKeyID
	}

	if accessKeySecret := os.Getenv("BUCKET_ACCESS_KEY_SECRET"); accessKeySecret != "" {
		c.Export.Spaces.AccessKeySecret = accessKeySecret
	}

	if region := os.Getenv("BUCKET_REGION"); region != "" {
		c.Export.Spaces.Region = region
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
}

// CollectionPath is the location of the JSON collection inside outputDir
func (c *Config) CollectionPath(outputDir string) string {
	if outputDir == "" {
		outputDir = c.Output.Dir
	}
	return filepath.Join(outputDir, c.Output.CollectionFile)
}

// ExpandHome replaces a leading ~ with the current user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
