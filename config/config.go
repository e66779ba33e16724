package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug               = "debug"
	ConfigAnalysisMaxDepth    = "analysis-max-depth"
	ConfigAnalysisThreads     = "analysis-threads"
	ConfigCacheShards         = "cache-shards"
	ConfigCacheMemoryFraction = "cache-memory-fraction"
	ConfigStoreBackend        = "store-backend"
	ConfigStorePath           = "store-path"
	ConfigHistoryFile         = "history-file"
	ConfigAutoplayGames       = "autoplay-games"
)

type Config struct {
	viper.Viper
}

func setDefaults(c *Config) {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigAnalysisMaxDepth, 12)
	c.SetDefault(ConfigAnalysisThreads, runtime.NumCPU())
	c.SetDefault(ConfigCacheShards, 64)
	c.SetDefault(ConfigCacheMemoryFraction, 0.1)
	c.SetDefault(ConfigStoreBackend, "none")
	c.SetDefault(ConfigStorePath, "./quantik-positions")
	c.SetDefault(ConfigHistoryFile, filepath.Join(os.TempDir(), "quantik_readline.tmp"))
	c.SetDefault(ConfigAutoplayGames, 1000)
}

// DefaultConfig returns a config with only the defaults set. Tests use it.
func DefaultConfig() *Config {
	c := &Config{}
	c.Viper = *viper.New()
	setDefaults(c)
	return c
}

// RegisterFlags adds a flag for every setting to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigAnalysisMaxDepth, 12, "deepest ply to enumerate in the tree analysis (1-16)")
	fs.Int(ConfigAnalysisThreads, runtime.NumCPU(), "number of analysis workers")
	fs.Int(ConfigCacheShards, 64, "number of shards in the canonical-form cache")
	fs.Float64(ConfigCacheMemoryFraction, 0.1, "fraction of system memory the canonical-form cache may use")
	fs.String(ConfigStoreBackend, "none", "where to save canonical positions: badger, memory, sqlite or none")
	fs.String(ConfigStorePath, "./quantik-positions", "directory (badger) or file (sqlite) for the position store")
	fs.String(ConfigHistoryFile, filepath.Join(os.TempDir(), "quantik_readline.tmp"), "shell history file")
	fs.Int(ConfigAutoplayGames, 1000, "number of random games for the autoplay command")
}

// Load reads, in increasing order of precedence, the defaults, an optional
// config.yaml in ~/.quantik or the working directory, QUANTIK_* environment
// variables, and the command-line flags in args.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("quantik", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.LoadFlagSet(fs)
}

// LoadFlagSet is Load for a flag set that was already parsed, such as the
// persistent flags of a cobra command.
func (c *Config) LoadFlagSet(fs *pflag.FlagSet) error {
	c.Viper = *viper.New()
	setDefaults(c)
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("quantik")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		c.AddConfigPath(filepath.Join(home, ".quantik"))
	}
	c.AddConfigPath(".")
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		log.Debug().Msg("no config file found, using flags and environment")
	}
	return nil
}
