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

package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/logging"
)

var (
	// ErrInvalidNamespace is returned when defining inside a non-namespace object.
	ErrInvalidNamespace = errors.New("cref(registry): owner is not a namespace")
	// ErrForeignNamespace is returned when the owner does not belong to this
	// registry (for example an object kept across Clear).
	ErrForeignNamespace = errors.New("cref(registry): owner is not registered here")
	// ErrInvalidName is returned for empty names or names containing a separator.
	ErrInvalidName = codeobj.ErrInvalidName
	// ErrConflictingDefinition indicates an attempt to redefine a path with
	// a different kind.
	ErrConflictingDefinition = errors.New("cref(registry): conflicting definition")
	// ErrEmptyKeyword is returned when an empty link keyword is provided.
	ErrEmptyKeyword = errors.New("cref(registry): empty link keyword")
	// ErrConflictingLink indicates an attempt to rebind a link keyword to
	// a different kind. The first binding stays in place.
	ErrConflictingLink = errors.New("cref(registry): conflicting link registration")
)

// Option configures a registry.
type Option func(*registry)

// WithLogger sets the logger used for conflict diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *registry) {
		r.SetLogger(l)
	}
}

// New constructs an empty Registry with its own root sentinel.
func New(opts ...Option) apis.Registry {
	r := &registry{
		root:  codeobj.NewRoot(),
		objs:  make(map[string]*codeobj.Object),
		links: make(map[string]codeobj.Kind),
	}
	r.log.Store(logging.Discard())
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// registry is a map-backed Registry. Writers (the parse phase) and readers
// (resolution) are expected to take turns; the RWMutex keeps interleaved
// use from corrupting the maps.
type registry struct {
	mu sync.RWMutex
	// root never changes identity.
	root *codeobj.Object
	// objs maps canonical path to object.
	objs map[string]*codeobj.Object
	// links maps link keyword to kind.
	links map[string]codeobj.Kind
	// log is swapped when a builder reuses the registry.
	log atomic.Pointer[slog.Logger]
}

// Ensure registry implements apis.Registry.
var _ apis.Registry = (*registry)(nil)

// At returns the object registered under path.
func (r *registry) At(path string) (*codeobj.Object, bool) {
	path = strings.TrimPrefix(strings.TrimSpace(path), codeobj.NSEP)
	if path == "" {
		return r.root, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objs[path]
	return obj, ok
}

// SetLogger replaces the logger used for conflict diagnostics. A nil
// logger discards.
func (r *registry) SetLogger(l *slog.Logger) {
	r.log.Store(logging.OrDiscard(l))
}

// Root returns the root sentinel.
func (r *registry) Root() *codeobj.Object {
	return r.root
}

// Define creates the object name of the given kind inside ns, or returns
// the existing one when the same path was already defined with the same
// kind (reopening a module or class). The reopening definition is merged
// into the existing object (see codeobj.Object.Reopen).
func (r *registry) Define(ns *codeobj.Object, name string, kind codeobj.Kind, opts ...codeobj.Option) (*codeobj.Object, error) {
	if ns == nil {
		ns = r.root
	}
	if !ns.IsNamespace() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidNamespace, ns, ns.Kind())
	}

	obj, err := codeobj.New(ns, name, kind, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if ns != r.root && r.objs[ns.Path()] != ns {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrForeignNamespace, ns)
	}
	old, exists := r.objs[obj.Path()]
	if !exists {
		obj.Attach()
		r.objs[obj.Path()] = obj
	}
	r.mu.Unlock()

	if !exists {
		return obj, nil
	}
	if old.Kind() != obj.Kind() {
		r.log.Load().Warn("conflicting definition",
			slog.String("path", obj.Path()),
			slog.String("have", old.Kind().String()),
			slog.String("want", obj.Kind().String()))
		return nil, fmt.Errorf("%w: %s is a %s, not a %s", ErrConflictingDefinition, obj.Path(), old.Kind(), obj.Kind())
	}
	// Mixins may be deferred references; comparing them resolves through
	// this registry, so the lock must be released first.
	old.Reopen(obj)
	return old, nil
}

// RegisterLink binds keyword to kind. It is idempotent for the same
// (keyword, kind) pair; distinct keywords may share a kind.
func (r *registry) RegisterLink(keyword string, kind codeobj.Kind) error {
	if keyword == "" {
		return ErrEmptyKeyword
	}
	if kind == "" {
		kind = codeobj.KindProxy
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.links[keyword]; ok {
		if old == kind {
			return nil
		}
		r.log.Load().Warn("conflicting link keyword",
			slog.String("keyword", keyword),
			slog.String("have", old.String()),
			slog.String("want", kind.String()))
		return fmt.Errorf("%w: %q is bound to %s", ErrConflictingLink, keyword, old)
	}
	r.links[keyword] = kind
	return nil
}

// LinkKind returns the kind bound to keyword.
func (r *registry) LinkKind(keyword string) (codeobj.Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.links[keyword]
	return k, ok
}

// Links returns a copy of the keyword table.
func (r *registry) Links() map[string]codeobj.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]codeobj.Kind, len(r.links))
	for k, v := range r.links {
		out[k] = v
	}
	return out
}

// Entries returns a snapshot of every registered object, sorted by path.
func (r *registry) Entries() []*codeobj.Object {
	r.mu.RLock()
	out := make([]*codeobj.Object, 0, len(r.objs))
	for _, obj := range r.objs {
		out = append(out, obj)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *codeobj.Object) int {
		return strings.Compare(a.Path(), b.Path())
	})
	return out
}

// Count returns the number of registered objects.
func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objs)
}

// Clear removes every object and link keyword. The root keeps its identity
// but loses its children and mixins.
func (r *registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objs = make(map[string]*codeobj.Object)
	r.links = make(map[string]codeobj.Kind)
	r.root.Prune()
}
