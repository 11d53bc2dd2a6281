package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	ConfigPaths []string
	FileName    string
	EnvPrefix   string
}

// Load returns the merged configuration from files and environment
// variables. Environment variables use the FRANKIE_ prefix with dots
// replaced by underscores (FRANKIE_CACHE_TTLSECONDS and so on).
func Load(opts LoaderOptions) (Config, error) {
	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = "frankie"
	}

	configFile := locateConfigFile(name, opts.ConfigPaths)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(name)
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "FRANKIE"
	}
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Token == "" {
		// The conventional token variable wins over nothing at all.
		cfg.Token = os.Getenv("GITHUB_TOKEN")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Empty defaults register the keys so AutomaticEnv can see them.
	v.SetDefault("token", "")
	v.SetDefault("export.templatePath", "")
	v.SetDefault("codex.transcriptDir", "")
	v.SetDefault("rewrite.apiKey", "")
	v.SetDefault("rewrite.baseURL", "")
	v.SetDefault("repositoryDir", ".")
	v.SetDefault("cache.path", defaultCachePath())
	v.SetDefault("cache.ttlSeconds", 300)
	v.SetDefault("sync.intervalSeconds", 30)
	v.SetDefault("reply.maxLength", 2000)
	v.SetDefault("reply.templates", []string{
		"Thanks {{ reviewer }}, fixed in the next push.",
		"Good catch on {{ file }}:{{ line }} — addressing it now.",
		"I think this is intentional; happy to discuss.",
	})
	v.SetDefault("codex.command", "codex")
	v.SetDefault("http.timeoutSeconds", 30)
	v.SetDefault("rewrite.model", "gpt-4o-mini")
}

func defaultCachePath() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "frankie", "cache.db")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "state", "frankie", "cache.db")
	}
	return "frankie-cache.db"
}

func locateConfigFile(name string, paths []string) string {
	if len(paths) == 0 {
		paths = defaultConfigPaths()
	}
	for _, dir := range paths {
		for _, ext := range []string{"yaml", "yml", "toml", "json"} {
			candidate := filepath.Join(dir, fmt.Sprintf("%s.%s", name, ext))
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		paths = append(paths, filepath.Join(configHome, "frankie"))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "frankie"))
	}
	return paths
}
