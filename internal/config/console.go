package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CardStyle is the visual configuration handed to the card-input widget.
type CardStyle struct {
	IconColor        string `mapstructure:"iconColor" json:"icon_color"`
	Color            string `mapstructure:"color" json:"color"`
	FontWeight       int    `mapstructure:"fontWeight" json:"font_weight"`
	FontFamily       string `mapstructure:"fontFamily" json:"font_family"`
	FontSize         string `mapstructure:"fontSize" json:"font_size"`
	PlaceholderColor string `mapstructure:"placeholderColor" json:"placeholder_color"`
}

// ConsoleConfig holds screen-level settings that may change without a restart.
type ConsoleConfig struct {
	ElementsLocale string    `mapstructure:"elementsLocale"`
	CardStyle      CardStyle `mapstructure:"cardStyle"`
	ResourceBucket string    `mapstructure:"resourceBucket"`
}

func DefaultConsoleConfig() ConsoleConfig {
	return ConsoleConfig{
		ElementsLocale: "en",
		CardStyle: CardStyle{
			IconColor:        "#666EE8",
			Color:            "#31325F",
			FontWeight:       300,
			FontFamily:       `"Helvetica Neue", Helvetica, sans-serif`,
			FontSize:         "18px",
			PlaceholderColor: "#CFD7E0",
		},
		ResourceBucket: "resource",
	}
}

type ConsoleConfigHolder struct {
	current atomic.Value // holds ConsoleConfig
}

// NewStaticConsoleConfigHolder returns a holder that never reloads.
func NewStaticConsoleConfigHolder(cfg ConsoleConfig) *ConsoleConfigHolder {
	holder := &ConsoleConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewConsoleConfigHolder(log *zap.Logger) (*ConsoleConfigHolder, error) {
	log = log.Named("console.config")
	v := viper.New()

	v.SetConfigName("console")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/billingconsole")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BILLINGCONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConsoleConfig()
	v.SetDefault("console.elementsLocale", defaults.ElementsLocale)
	v.SetDefault("console.resourceBucket", defaults.ResourceBucket)
	v.SetDefault("console.cardStyle.iconColor", defaults.CardStyle.IconColor)
	v.SetDefault("console.cardStyle.color", defaults.CardStyle.Color)
	v.SetDefault("console.cardStyle.fontWeight", defaults.CardStyle.FontWeight)
	v.SetDefault("console.cardStyle.fontFamily", defaults.CardStyle.FontFamily)
	v.SetDefault("console.cardStyle.fontSize", defaults.CardStyle.FontSize)
	v.SetDefault("console.cardStyle.placeholderColor", defaults.CardStyle.PlaceholderColor)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg, err := decodeConsoleConfig(v)
	if err != nil {
		return nil, err
	}
	if err := validateConsoleConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticConsoleConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeConsoleConfig(v)
		if err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateConsoleConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *ConsoleConfigHolder) Get() ConsoleConfig {
	if h == nil {
		return DefaultConsoleConfig()
	}
	cfg, ok := h.current.Load().(ConsoleConfig)
	if !ok {
		return DefaultConsoleConfig()
	}
	return cfg
}

// decodeConsoleConfig goes through AllSettings so nested defaults survive a partial file.
func decodeConsoleConfig(v *viper.Viper) (ConsoleConfig, error) {
	var wrapper struct {
		Console ConsoleConfig `mapstructure:"console"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return ConsoleConfig{}, err
	}
	return wrapper.Console, nil
}

func validateConsoleConfig(cfg ConsoleConfig) error {
	if strings.TrimSpace(cfg.ElementsLocale) == "" {
		return errors.New("console.elementsLocale cannot be empty")
	}
	if strings.TrimSpace(cfg.ResourceBucket) == "" {
		return errors.New("console.resourceBucket cannot be empty")
	}
	return nil
}
