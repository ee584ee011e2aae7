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

package builder

import (
	"log/slog"
	"slices"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/logging"
	"dirpx.dev/cref/registry"
	"dirpx.dev/cref/resolver"
	"dirpx.dev/cref/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// loggerSetter is implemented by registries whose logger can follow a
// configuration change.
type loggerSetter interface {
	SetLogger(l *slog.Logger)
}

// BuildRegistry returns the previous registry when there is one, so objects
// and the root sentinel survive configuration changes, or a new registry
// otherwise. A reused registry switches to cfg's logger. The configured
// link keywords are registered in both cases; keywords already bound to
// another kind are left alone and logged.
func (b *builder) BuildRegistry(cfg apis.Config, preg apis.Registry, _ any) apis.Registry {
	log := logging.OrDiscard(cfg.Logger)
	nreg := preg
	if nreg == nil {
		nreg = registry.New(registry.WithLogger(log))
	} else if ls, ok := nreg.(loggerSetter); ok {
		ls.SetLogger(log)
	}

	keywords := make([]string, 0, len(cfg.Links))
	for kw := range cfg.Links {
		keywords = append(keywords, kw)
	}
	slices.Sort(keywords)
	for _, kw := range keywords {
		if err := nreg.RegisterLink(kw, cfg.Links[kw]); err != nil {
			log.Warn("link keyword not registered", slog.String("keyword", kw), slog.Any("error", err))
		}
	}
	return nreg
}

// BuildResolver builds the standard resolution chain: the literal path
// first, then member lookup through enclosing namespaces and mixins.
func (b *builder) BuildResolver(cfg apis.Config, reg apis.Registry, _ apis.Resolver, _ any) apis.Resolver {
	return resolver.New(reg, cfg,
		strategy.NewLiteralStrategy(),
		strategy.NewMemberStrategy(),
	)
}
