package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const (
	// MaxArticleLimit bounds how many entries are taken per feed.
	MaxArticleLimit = 5

	PolicyParagraph   = "paragraph"
	PolicyLines       = "lines"
	PolicyReadability = "readability"
)

type rawCfg struct {
	// Application configuration
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SourcesDir    string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing persona source configuration files"`
	ArticleLimit  int    `long:"article-limit" env:"ARTICLE_LIMIT" default:"5" description:"Default number of articles to fetch per feed (1-5)"`
	ExtractPolicy string `long:"extract-policy" env:"EXTRACT_POLICY" default:"paragraph" choice:"paragraph" choice:"lines" choice:"readability" description:"HTML reduction policy for article text"`
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of concurrent article fetches per feed"`
	Timeout       int    `long:"timeout" env:"TIMEOUT" default:"30" description:"Per-request HTTP timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Digest/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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

	cfg := &Cfg{
		Port:          raw.Port,
		SourcesDir:    raw.SourcesDir,
		ArticleLimit:  ClampArticleLimit(raw.ArticleLimit),
		ExtractPolicy: raw.ExtractPolicy,
		WorkerCount:   raw.WorkerCount,
		Timeout:       raw.Timeout,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
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

// ClampArticleLimit forces a per-feed article count into the [1,5] range.
// Zero and negative values fall back to the maximum.
func ClampArticleLimit(limit int) int {
	if limit < 1 || limit > MaxArticleLimit {
		return MaxArticleLimit
	}
	return limit
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
