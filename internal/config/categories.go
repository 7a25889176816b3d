package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CategoryAlias rewrites a vendor category name before lookup.
// Contains matches case-insensitively, Equals matches exactly.
type CategoryAlias struct {
	Contains string `mapstructure:"contains"`
	Equals   string `mapstructure:"equals"`
	Target   string `mapstructure:"target"`
}

// CategoryRules canonicalizes vendor category names.
type CategoryRules struct {
	Aliases []CategoryAlias `mapstructure:"aliases"`
	Default string          `mapstructure:"default"`
}

func DefaultCategoryRules() CategoryRules {
	return CategoryRules{
		Aliases: []CategoryAlias{
			{Contains: "milch", Target: "Milch"},
			{Equals: "Allergie.glutenfrei", Target: "Glutenfrei"},
		},
		Default: "N/A",
	}
}

// Canonical applies every alias in order to name.
func (r CategoryRules) Canonical(name string) string {
	for _, alias := range r.Aliases {
		switch {
		case alias.Contains != "":
			if strings.Contains(strings.ToLower(name), strings.ToLower(alias.Contains)) {
				name = alias.Target
			}
		case alias.Equals != "":
			if name == alias.Equals {
				name = alias.Target
			}
		}
	}
	return name
}

type CategoryRulesHolder struct {
	current atomic.Value // holds CategoryRules
}

// NewStaticCategoryRules returns a holder that never reloads.
func NewStaticCategoryRules(rules CategoryRules) *CategoryRulesHolder {
	holder := &CategoryRulesHolder{}
	holder.current.Store(rules)
	return holder
}

func NewCategoryRulesHolder() (*CategoryRulesHolder, error) {
	v := viper.New()

	v.SetConfigName("categories")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/mensaplan")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MENSAPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCategoryRules()
	v.SetDefault("categories.default", defaults.Default)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("categories.aliases", defaults.Aliases)
	}

	var rules CategoryRules
	if err := v.UnmarshalKey("categories", &rules); err != nil {
		return nil, err
	}
	if err := validateCategoryRules(rules); err != nil {
		return nil, err
	}

	holder := NewStaticCategoryRules(rules)

	if v.ConfigFileUsed() != "" {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated CategoryRules
			if err := v.UnmarshalKey("categories", &updated); err != nil {
				log.Printf("[category-rules] reload failed: %v", err)
				return
			}
			if err := validateCategoryRules(updated); err != nil {
				log.Printf("[category-rules] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[category-rules] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *CategoryRulesHolder) Get() CategoryRules {
	return h.current.Load().(CategoryRules)
}

func validateCategoryRules(rules CategoryRules) error {
	for _, alias := range rules.Aliases {
		if strings.TrimSpace(alias.Target) == "" {
			return errors.New("categories.aliases target cannot be empty")
		}
		if alias.Contains == "" && alias.Equals == "" {
			return errors.New("categories.aliases needs contains or equals")
		}
	}
	return nil
}
