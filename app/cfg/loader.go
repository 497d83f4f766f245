package cfg

import (
	"cmp"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Port    string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://rivalmap.example.com)"`
	DBPath  string `long:"db-path" env:"DB_PATH" default:"./rivalmap.db" description:"Path to the SQLite database file"`

	// Research service configuration
	ResearchAPIURL string `long:"research-api-url" env:"RESEARCH_API_URL" default:"https://api.parallel.ai" description:"Base URL of the research task service"`
	ResearchAPIKey string `long:"research-api-key" env:"RESEARCH_API_KEY" description:"API key for the research task service (required)" required:"true"`
	WebhookSecret  string `long:"webhook-secret" env:"WEBHOOK_SECRET" description:"Shared secret for webhook signature verification (required)" required:"true"`
	RedditToolName string `long:"reddit-tool-name" env:"REDDIT_TOOL_NAME" default:"reddit-research" description:"Name of the remote Reddit mining tool"`
	RedditToolURL  string `long:"reddit-tool-url" env:"REDDIT_TOOL_URL" description:"URL of the remote Reddit mining tool"`

	// Authentication configuration
	OAuthClientID     string `long:"oauth-client-id" env:"OAUTH_CLIENT_ID" description:"OAuth client ID"`
	OAuthClientSecret string `long:"oauth-client-secret" env:"OAUTH_CLIENT_SECRET" description:"OAuth client secret"`
	OAuthAuthURL      string `long:"oauth-auth-url" env:"OAUTH_AUTH_URL" description:"OAuth authorization endpoint"`
	OAuthTokenURL     string `long:"oauth-token-url" env:"OAUTH_TOKEN_URL" description:"OAuth token endpoint"`
	OAuthUserInfoURL  string `long:"oauth-userinfo-url" env:"OAUTH_USERINFO_URL" description:"OAuth user info endpoint"`
	SessionSecret     string `long:"session-secret" env:"SESSION_SECRET" description:"Secret for signing session cookies (required)" required:"true"`

	// Administration
	Admins     string `long:"admins" env:"ADMINS" description:"Comma-separated list of admin usernames"`
	AdminsFile string `long:"admins-file" env:"ADMINS_FILE" description:"Optional YAML file with an 'admins' list"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Rivalmap/1.0" description:"User agent string for outbound HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

type adminsFile struct {
	Admins []string `yaml:"admins"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	admins := splitAdmins(raw.Admins)
	if raw.AdminsFile != "" {
		fileAdmins, err := loadAdminsFile(raw.AdminsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load admins file: %w", err)
		}
		admins = append(admins, fileAdmins...)
	}

	cfg := &Cfg{
		Port:              raw.Port,
		BaseUrl:           strings.TrimRight(raw.BaseUrl, "/"),
		DBPath:            raw.DBPath,
		ResearchAPIURL:    strings.TrimRight(raw.ResearchAPIURL, "/"),
		ResearchAPIKey:    raw.ResearchAPIKey,
		WebhookSecret:     raw.WebhookSecret,
		RedditToolName:    raw.RedditToolName,
		RedditToolURL:     raw.RedditToolURL,
		OAuthClientID:     raw.OAuthClientID,
		OAuthClientSecret: raw.OAuthClientSecret,
		OAuthAuthURL:      raw.OAuthAuthURL,
		OAuthTokenURL:     raw.OAuthTokenURL,
		OAuthUserInfoURL:  raw.OAuthUserInfoURL,
		SessionSecret:     raw.SessionSecret,
		Admins:            admins,
		AdminsFile:        raw.AdminsFile,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func splitAdmins(s string) []string {
	if s == "" {
		return nil
	}
	var admins []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			admins = append(admins, trimmed)
		}
	}
	return admins
}

func loadAdminsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var parsed adminsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return parsed.Admins, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
