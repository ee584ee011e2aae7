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
	"log/slog"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/logging"
	upath "dirpx.dev/cref/utils/path"
)

const (
	// DefaultSearchOrder represents the default for SearchOrder.
	// Mixins are searched right after the level that includes them.
	DefaultSearchOrder = upath.OrderInterleaved
	// DefaultMaxAliasDepth represents the default for MaxAliasDepth.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxAliasDepth = 8
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxAliasDepth is valid.
	if cfg.MaxAliasDepth <= 0 {
		cfg.MaxAliasDepth = DefaultMaxAliasDepth
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		SearchOrder:   DefaultSearchOrder,
		MaxAliasDepth: DefaultMaxAliasDepth,
		Logger:        logging.Discard(),
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithSearchOrder sets the SearchOrder option.
func WithSearchOrder(order upath.Order) Option {
	return func(c *apis.Config) {
		c.SearchOrder = order
	}
}

// WithMaxAliasDepth sets the MaxAliasDepth option.
// A non-positive value resets to the default.
func WithMaxAliasDepth(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxAliasDepth = DefaultMaxAliasDepth
			return
		}
		c.MaxAliasDepth = max
	}
}

// WithLink adds a link keyword bound to kind.
// The Links map is copied so configs never share it.
func WithLink(keyword string, kind codeobj.Kind) Option {
	return func(c *apis.Config) {
		links := make(map[string]codeobj.Kind, len(c.Links)+1)
		for k, v := range c.Links {
			links[k] = v
		}
		links[keyword] = kind
		c.Links = links
	}
}

// WithLogger sets the Logger option. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *apis.Config) {
		c.Logger = logging.OrDiscard(l)
	}
}
