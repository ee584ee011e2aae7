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

package cref

import (
	"errors"
	"sync"
	"sync/atomic"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/builder"
	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/config"
	"dirpx.dev/cref/link"
	"dirpx.dev/cref/proxy"
)

// init initializes the global cref state.
func init() {
	// Initialize state with default cfg, reg, and res.
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.reg = b.BuildRegistry(s.cfg, nil, nil)
	s.res = b.BuildResolver(s.cfg, s.reg, nil, nil)
	s.bld = b
	// Store the initial state atomically.
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("cref: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("cref: builder returned nil resolver")
)

// Root returns the root sentinel of the global registry.
func Root() *codeobj.Object {
	return st.Load().reg.Root()
}

// At looks path up in the global registry.
func At(path string) (*codeobj.Object, bool) {
	return st.Load().reg.At(path)
}

// Define creates (or reopens) an object in the global registry.
func Define(ns *codeobj.Object, name string, kind codeobj.Kind, opts ...codeobj.Option) (*codeobj.Object, error) {
	return st.Load().reg.Define(ns, name, kind, opts...)
}

// RegisterLink binds a link keyword to a kind in the global registry.
func RegisterLink(keyword string, kind codeobj.Kind) error {
	return st.Load().reg.RegisterLink(keyword, kind)
}

// Links returns a copy of the global link keyword table.
func Links() map[string]codeobj.Kind {
	return st.Load().reg.Links()
}

// Clear empties the global registry. The root keeps its identity.
func Clear() {
	st.Load().reg.Clear()
}

// Proxy returns a deferred reference to ref written inside ctx, resolved
// through the global resolver. A nil ctx means the root.
func Proxy(ctx codeobj.Ref, ref string, opts ...proxy.Option) (*proxy.Proxy, error) {
	return proxy.New(st.Load().res, ctx, ref, opts...)
}

// P returns a deferred reference to ref written at the top level.
// It panics only if the global resolver is missing, which init rules out.
func P(ref string, opts ...proxy.Option) *proxy.Proxy {
	p, err := Proxy(nil, ref, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// ResolveLink resolves link text against the global registry.
func ResolveLink(keyword, title string) (*codeobj.Object, bool) {
	return link.New(st.Load().res).Resolve(keyword, title)
}

// SetAll explicitly sets all global cref state components.
//
// Nil arguments leave the corresponding component unchanged,
// except for ext which is always replaced.
//
// This is mainly used by tests to get a clean deterministic state.
func SetAll(cfg *apis.Config, ext any, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	next.ext = ext
	next.preg, next.pres = reg != nil, res != nil
	if cfg != nil {
		next.cfg = *cfg
	}
	if bld != nil {
		next.bld = bld
	}

	next.reg = reg
	if next.reg == nil {
		next.reg = next.bld.BuildRegistry(next.cfg, old.reg, next.ext)
	}
	next.res = res
	if next.res == nil {
		next.res = next.bld.BuildResolver(next.cfg, next.reg, old.res, next.ext)
	}
	publish(&next)
}

// Config returns the global cref configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration and rebuilds the unpinned layers.
func SetConfig(cfg apis.Config) {
	rebuild(func(s *state) { s.cfg = cfg })
}

// Registry returns the global cref registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry sets and pins the global registry, then rebuilds the
// resolver unless it is pinned.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	next.reg, next.preg = reg, true
	if !old.pres {
		next.res = old.bld.BuildResolver(old.cfg, reg, old.res, old.ext)
	}
	publish(&next)
}

// Resolver returns the global cref resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver sets and pins the global resolver.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}
	update(func(s *state) { s.res, s.pres = res, true })
}

// Builder returns the global cref builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder and rebuilds the unpinned layers.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}
	rebuild(func(s *state) { s.bld = b })
}

// SetExt replaces extension config and rebuilds non-pinned layers via the builder.
func SetExt[T any](ext T) {
	rebuild(func(s *state) { s.ext = ext })
}

// ExtAs returns the global cref extension config as type T.
func ExtAs[T any]() (T, bool) {
	ext, ok := st.Load().ext.(T)
	return ext, ok
}

// IsRegistryPinned returns whether the global registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry stops rebuilds of the global registry.
func PinRegistry() {
	update(func(s *state) { s.preg = true })
}

// UnpinRegistry lets the builder rebuild the global registry again.
func UnpinRegistry() {
	update(func(s *state) { s.preg = false })
}

// IsResolverPinned returns whether the global resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver stops rebuilds of the global resolver.
func PinResolver() {
	update(func(s *state) { s.pres = true })
}

// UnpinResolver lets the builder rebuild the global resolver again.
func UnpinResolver() {
	update(func(s *state) { s.pres = false })
}

// rebuild applies mutate to a copy of the current state, rebuilds the
// unpinned registry and resolver with the resulting builder/config/ext,
// and publishes it.
func rebuild(mutate func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	mutate(&next)
	if !next.preg {
		next.reg = next.bld.BuildRegistry(next.cfg, old.reg, next.ext)
	}
	if !next.pres {
		next.res = next.bld.BuildResolver(next.cfg, next.reg, old.res, next.ext)
	}
	publish(&next)
}

// update applies mutate to a copy of the current state and publishes it
// without rebuilding anything.
func update(mutate func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	mutate(&next)
	publish(&next)
}

// publish validates s and stores it. Callers hold buildMu.
func publish(s *state) {
	// Ensure non-nil reg and res.
	if s.reg == nil {
		panic(ErrNilRegistry)
	}
	if s.res == nil {
		panic(ErrNilResolver)
	}
	st.Store(s)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global cref state.
var st atomic.Pointer[state]

// state is the global cref state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers copy it and swap the copy in.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// ext is the global extension configuration.
	ext any
	// reg is the global registry.
	reg apis.Registry
	// res is the global resolver.
	res apis.Resolver
	// bld is the global builder.
	bld apis.Builder
	// preg indicates whether the reg is pinned.
	preg bool
	// pres indicates whether the res is pinned.
	pres bool
}
