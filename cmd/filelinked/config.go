package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/filelinked/codec"
)

const envPrefix = "FILELINKED"

// config holds settings shared by all subcommands. Sources, lowest priority
// first: defaults, config file, FILELINKED_* env vars, flags.
type config struct {
	Codec     string `mapstructure:"codec"`
	Framed    bool   `mapstructure:"framed"`
	MaxDecode int    `mapstructure:"max_decode"`
	Atomic    bool   `mapstructure:"atomic"`
	LogLevel  string `mapstructure:"log_level"`
	Events    bool   `mapstructure:"events"`
}

func bindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (.yaml, .yml, .json, .toml)")
	fs.String("codec", "cbor", "codec: cbor, msgpack or json")
	fs.Bool("framed", false, "wrap payloads in the FLNK envelope")
	fs.Int("max-decode", 0, "refuse files larger than this many bytes (0 = no limit)")
	fs.Bool("atomic", false, "write through a temp file and rename")
	fs.String("log-level", "warn", "debug, info, warn or error")
	fs.Bool("events", false, "log handle events to stderr")
}

func loadConfig(fs *pflag.FlagSet) (config, error) {
	v := viper.New()
	v.SetDefault("codec", "cbor")
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		switch ext := filepath.Ext(path); ext {
		case ".yaml", ".yml":
			v.SetConfigType("yaml")
		case ".json":
			v.SetConfigType("json")
		case ".toml":
			v.SetConfigType("toml")
		default:
			// let viper infer or fail with a clear message
		}
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, flag := range map[string]string{
		"codec":      "codec",
		"framed":     "framed",
		"max_decode": "max-decode",
		"atomic":     "atomic",
		"log_level":  "log-level",
		"events":     "events",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return config{}, err
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Codec = strings.ToLower(cfg.Codec)
	return cfg, nil
}

// codecFor builds the codec stack described by cfg:
// LimitCodec(Framed(base)), each layer optional.
func codecFor[V any](cfg config) (codec.Codec[V], error) {
	var cd codec.Codec[V]
	switch cfg.Codec {
	case "", "cbor":
		cb, err := codec.NewCBOR[V](true)
		if err != nil {
			return nil, err
		}
		cd = cb
	case "msgpack":
		cd = codec.Msgpack[V]{}
	case "json":
		cd = codec.JSON[V]{}
	default:
		return nil, fmt.Errorf("unknown codec %q", cfg.Codec)
	}
	if cfg.Framed {
		cd = codec.Framed[V]{Inner: cd}
	}
	if cfg.MaxDecode > 0 {
		cd = codec.LimitCodec[V]{Inner: cd, MaxDecode: cfg.MaxDecode}
	}
	return cd, nil
}
