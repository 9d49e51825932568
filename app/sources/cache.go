package sources

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/okatkov/rss-digest/app/feed"
)

// Config is one persona source: a named feed URL with a display image and
// optional entry filters, defined in <name>.yml under the sources directory.
type Config struct {
	Name    string            // Derived from filename (without .yml extension)
	Image   string            `yaml:"image"`
	FeedURL string            `yaml:"feed_url"`
	Filters []feed.FilterRule `yaml:"filters"`
}

type Cache struct {
	sourcesDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewCache(sourcesDir string) *Cache {
	return &Cache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Config),
	}
}

// Run loads every source definition from the sources directory. A missing
// directory is not an error; the cache stays empty.
func (c *Cache) Run() error {
	if _, err := os.Stat(c.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := c.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", name, "feed_url", config.FeedURL, "filters", len(config.Filters))
	}

	return nil
}

func (c *Cache) LoadConfig(name string) (*Config, error) {
	configFile := filepath.Join(c.sourcesDir, name+".yml")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.Name = name

	if err := c.validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[config.Name] = &config

	return &config, nil
}

func (c *Cache) GetConfig(name string) (*Config, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, ok := c.cache[name]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", name)
	}
	return config, nil
}

func (c *Cache) GetConfigs() map[string]*Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(c.cache))
	for k, v := range c.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (c *Cache) GetConfigCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cache)
}

func (c *Cache) validateConfig(config *Config) error {
	if config.FeedURL == "" {
		return fmt.Errorf("feed_url is required")
	}

	validFields := map[string]bool{
		"title":   true,
		"summary": true,
		"link":    true,
	}

	for i, rule := range config.Filters {
		if !validFields[rule.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, rule.Field)
		}
		if len(rule.Includes) == 0 && len(rule.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
