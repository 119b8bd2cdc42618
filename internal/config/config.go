// Package config resolves docmerge settings from flags, an optional
// docmerge.yaml and DOCMERGE_* environment variables, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Theme names accepted by --theme.
const (
	ThemeClassic = "classic"
	ThemeThemed  = "themed"
)

// Config is the resolved application configuration.
type Config struct {
	Theme   string // classic or themed; themed has no PDF conversion
	Web     bool   // serve the browser UI instead of the terminal UI
	Port    int    // web UI port
	Output  string // headless combine destination
	Convert bool   // headless: also write a PDF next to Output
	Soffice string // explicit office suite binary; empty means search PATH
	Debug   bool
	LogFile string
}

// ConversionEnabled reports whether the selected variant offers PDF conversion.
func (c Config) ConversionEnabled() bool {
	return c.Theme != ThemeThemed
}

// Headless reports whether a combine was requested on the command line.
func (c Config) Headless() bool {
	return c.Output != ""
}

// Validate checks values that flags cannot constrain.
func (c Config) Validate() error {
	switch c.Theme {
	case ThemeClassic, ThemeThemed:
	default:
		return fmt.Errorf("unknown theme %q (want %s or %s)", c.Theme, ThemeClassic, ThemeThemed)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Convert && c.Output == "" {
		return errors.New("--convert needs --output")
	}
	if c.Convert && !c.ConversionEnabled() {
		return errors.New("the themed variant does not convert to PDF")
	}
	return nil
}

// RegisterFlags adds the configurable flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("theme", "t", ThemeClassic, "Visual variant: classic or themed (themed has no PDF conversion)")
	fs.BoolP("web", "w", false, "Serve the drag-and-drop UI in the browser instead of the terminal")
	fs.IntP("port", "p", 8080, "Port for --web")
	fs.StringP("output", "o", "", "Combine the given .docx files into this file without a UI")
	fs.BoolP("convert", "c", false, "With --output, also save a PDF next to the combined file")
	fs.String("soffice", "", "Path to the LibreOffice soffice binary (default: search PATH)")
	fs.BoolP("debug", "d", false, "Verbose development logging")
	fs.String("log", "", "Log file (the terminal UI defaults to the user cache dir)")
	fs.String("config", "", "Config file (default: ./docmerge.yaml or <user config dir>/docmerge/docmerge.yaml)")
}

// Load resolves the configuration for the flags in fs, which must have been
// registered with RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}

	cfgFile, _ := fs.GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docmerge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "docmerge"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Config{
		Theme:   v.GetString("theme"),
		Web:     v.GetBool("web"),
		Port:    v.GetInt("port"),
		Output:  v.GetString("output"),
		Convert: v.GetBool("convert"),
		Soffice: v.GetString("soffice"),
		Debug:   v.GetBool("debug"),
		LogFile: v.GetString("log"),
	}
	return cfg, cfg.Validate()
}
