/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/logging"
	upath "dirpx.dev/cref/utils/path"
)

// EnvPrefix prefixes environment overrides (CREF_SEARCH_ORDER, CREF_LOG_LEVEL, ...).
const EnvPrefix = "CREF"

// ErrInvalidLink is returned for link entries without a keyword.
var ErrInvalidLink = errors.New("cref(config): invalid link entry")

// File is the on-disk shape of a configuration file.
//
//	search_order: interleaved      # or ancestors-first
//	max_alias_depth: 8
//	links:
//	  - {keyword: "Class:", kind: class}
//	log:
//	  level: warn
//	  format: text
//
// Links are a list rather than a map because viper folds map keys to
// lower case and splits them on dots.
type File struct {
	SearchOrder   string     `mapstructure:"search_order"`
	MaxAliasDepth int        `mapstructure:"max_alias_depth"`
	Links         []FileLink `mapstructure:"links"`
	Log           FileLog    `mapstructure:"log"`
}

// FileLink is one link keyword binding.
type FileLink struct {
	Keyword string `mapstructure:"keyword"`
	Kind    string `mapstructure:"kind"`
}

// FileLog configures the logger.
type FileLog struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NewViper returns a viper instance with cref defaults and environment
// overrides bound. Commands bind their flags onto it.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("search_order", DefaultSearchOrder.String())
	v.SetDefault("max_alias_depth", DefaultMaxAliasDepth)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", string(logging.FormatText))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (YAML, TOML or JSON, by extension) and returns the
// resulting apis.Config. An empty path uses defaults and environment only.
// opts are applied last and win over the file.
func Load(path string, opts ...Option) (apis.Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return apis.Config{}, fmt.Errorf("cref(config): read %s: %w", path, err)
		}
	}
	return FromViper(v, opts...)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper, opts ...Option) (apis.Config, error) {
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return apis.Config{}, fmt.Errorf("cref(config): decode: %w", err)
	}
	base, err := f.Options()
	if err != nil {
		return apis.Config{}, err
	}
	return NewConfig(append(base, opts...)...), nil
}

// Options validates f and converts it into functional options.
func (f File) Options() ([]Option, error) {
	order, err := upath.ParseOrder(f.SearchOrder)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(f.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(f.Log.Format)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithSearchOrder(order),
		WithMaxAliasDepth(f.MaxAliasDepth),
		WithLogger(logging.New(logging.Config{Level: level, Format: format, Component: "cref"})),
	}
	for i, l := range f.Links {
		if strings.TrimSpace(l.Keyword) == "" {
			return nil, fmt.Errorf("%w: links[%d] has no keyword", ErrInvalidLink, i)
		}
		kind, err := codeobj.ParseKind(l.Kind)
		if err != nil {
			return nil, fmt.Errorf("cref(config): links[%d]: %w", i, err)
		}
		opts = append(opts, WithLink(l.Keyword, kind))
	}
	return opts, nil
}
