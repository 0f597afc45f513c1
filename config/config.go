package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultDenylist is the single source of truth for authors whose content is
// never stored. The sync-time exclusion filter and the cleanup job both build
// their matching from this list so that "what gets synced" and "what gets
// deleted" can never drift apart.
var DefaultDenylist = []string{
	"안지환2015",
	"부천유나이티드",
	"태산축구",
	"신용산축구부",
}

// DefaultKeywords are the search terms the club feed is built from.
var DefaultKeywords = []string{"부천FC", "부천FC1995"}

// TomlSync tunes one sync run.
type TomlSync struct {
	PageBudget  int `toml:"page_budget,omitempty"`
	PageSize    int `toml:"page_size,omitempty"`
	WindowHours int `toml:"window_hours,omitempty"`
}

// TomlConfig represents the top-level configuration file.
type TomlConfig struct {
	Keywords []string `toml:"keywords,omitempty"`
	Denylist []string `toml:"denylist,omitempty"`
	Sync     TomlSync `toml:"sync"`
}

// LoadDotEnv loads process environment from .env.local and .env, if present.
// Values already set in the environment win. Missing files are not an error,
// jobs running under a scheduler get their environment from secrets instead.
func LoadDotEnv() {
	godotenv.Load(".env.local")
	godotenv.Load(".env")
}

// LoadConfig reads the TOML application config from path and fills in
// defaults for anything left unset. A missing file yields the defaults.
func LoadConfig(path string) (*TomlConfig, error) {
	config := &TomlConfig{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if len(config.Keywords) == 0 {
		config.Keywords = DefaultKeywords
	}
	if len(config.Denylist) == 0 {
		config.Denylist = DefaultDenylist
	}
	if config.Sync.PageBudget <= 0 {
		config.Sync.PageBudget = 2
	}
	if config.Sync.PageSize <= 0 {
		config.Sync.PageSize = 50
	}
	if config.Sync.WindowHours <= 0 {
		// The search index lags behind publication, so look back two days
		config.Sync.WindowHours = 48
	}

	return config, nil
}
