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

package codeobj

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrInvalidName is returned for empty names or names containing a separator.
	ErrInvalidName = errors.New("cref(codeobj): invalid object name")
	// ErrInvalidNamespace is returned when the owner of a new object cannot own children.
	ErrInvalidNamespace = errors.New("cref(codeobj): owner is not a namespace")
)

// Ref is anything that stands in for a code object: the object itself or a
// deferred reference to it.
type Ref interface {
	// Path returns the canonical path, or a provisional one for deferred references.
	Path() string
	// Name returns the local name.
	Name() string
	// Kind returns the object's kind, or the kind hint for deferred references.
	Kind() Kind
	// Object returns the concrete object if one is known.
	Object() (*Object, bool)
	// Equal reports whether both sides denote the same object.
	Equal(other Ref) bool
	// RespondsTo reports whether op is supported.
	RespondsTo(op Op, includePrivate bool) bool
}

// Object is a declared module, class, method or constant.
//
// Objects are created by a registry and owned by it. The fields set at
// construction (name, kind, namespace, path) never change; children and
// mixins grow while source is being scanned, and reopening a definition
// may replace the value and linker.
type Object struct {
	name      string
	path      string
	kind      Kind
	scope     Scope
	namespace *Object

	mu       sync.RWMutex // guards the fields below
	value    string
	linker   Linker
	children []*Object
	mixins   []Ref
}

// Ensure Object implements Ref.
var _ Ref = (*Object)(nil)

// Option configures an Object at construction.
type Option func(*Object)

// WithScope sets the method scope. It only affects methods.
func WithScope(s Scope) Option {
	return func(o *Object) {
		o.scope = s
	}
}

// WithValue sets the source value of a constant. A constant whose value
// names a namespace acts as an alias for it.
func WithValue(v string) Option {
	return func(o *Object) {
		o.value = strings.TrimSpace(v)
	}
}

// WithMixins includes the given namespaces for lookup visibility.
func WithMixins(ms ...Ref) Option {
	return func(o *Object) {
		o.Include(ms...)
	}
}

// WithLinker replaces the title predicate used by LinkedBy.
func WithLinker(l Linker) Option {
	return func(o *Object) {
		o.linker = l
	}
}

// NewRoot returns a root sentinel. Each registry owns exactly one.
func NewRoot() *Object {
	return &Object{name: "root", kind: KindRoot}
}

// New builds a detached object owned by ns. The object is not visible in
// ns.Children until Attach is called; registries check for duplicates
// in between.
func New(ns *Object, name string, kind Kind, opts ...Option) (*Object, error) {
	if ns == nil || !ns.IsNamespace() {
		return nil, ErrInvalidNamespace
	}
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if kind == "" || kind == KindRoot {
		kind = KindProxy
	}
	o := &Object{name: name, kind: kind, namespace: ns}
	for _, opt := range opts {
		opt(o)
	}
	if kind == KindMethod {
		if o.scope == ScopeNone {
			o.scope = ScopeInstance
		}
	} else {
		o.scope = ScopeNone
	}
	o.path = Join(ns.path, o.Separator(), name)
	return o, nil
}

// ValidName reports whether name can be used as a local object name.
func ValidName(name string) bool {
	if strings.TrimSpace(name) != name || name == "" {
		return false
	}
	return !strings.Contains(name, NSEP) && !strings.ContainsAny(name, ISEP+CSEP)
}

// Attach links o into its namespace's children.
func (o *Object) Attach() {
	ns := o.namespace
	if ns == nil {
		return
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	for _, c := range ns.children {
		if c == o {
			return
		}
	}
	ns.children = append(ns.children, o)
}

// Reopen merges a later definition of the same path into o: a non-empty
// value and an explicit linker replace o's own, and mixins are added.
func (o *Object) Reopen(from *Object) {
	if from == nil || from == o {
		return
	}
	from.mu.RLock()
	value, linker := from.value, from.linker
	from.mu.RUnlock()

	o.mu.Lock()
	if value != "" {
		o.value = value
	}
	if linker != nil {
		o.linker = linker
	}
	o.mu.Unlock()

	// Comparing deferred mixins may resolve them through o, so Include
	// runs without o's lock.
	o.Include(from.Mixins()...)
}

// Prune detaches every child of o. Registries use it on the root when they
// are cleared.
func (o *Object) Prune() {
	o.mu.Lock()
	o.children = nil
	o.mixins = nil
	o.mu.Unlock()
}

// Include appends namespaces to the mixin list, skipping duplicates.
func (o *Object) Include(ms ...Ref) {
	for _, m := range ms {
		if isNilRef(m) || m == Ref(o) {
			continue
		}
		// Comparing a deferred reference may resolve it, and resolution
		// reads o's mixins, so the comparison runs unlocked.
		dup := false
		for _, have := range o.Mixins() {
			if have == m || have.Equal(m) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		o.mu.Lock()
		o.mixins = append(o.mixins, m)
		o.mu.Unlock()
	}
}

// Path returns the canonical path. The root's path is empty.
func (o *Object) Path() string { return o.path }

// Name returns the local name.
func (o *Object) Name() string { return o.name }

// Kind returns the object's kind.
func (o *Object) Kind() Kind { return o.kind }

// Scope returns the method scope (ScopeNone for non-methods).
func (o *Object) Scope() Scope { return o.scope }

// Value returns the source value of a constant.
func (o *Object) Value() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Namespace returns the owning object; nil for the root.
func (o *Object) Namespace() *Object { return o.namespace }

// Object returns o itself.
func (o *Object) Object() (*Object, bool) { return o, o != nil }

// IsRoot reports whether o is a root sentinel.
func (o *Object) IsRoot() bool { return o.kind == KindRoot && o.namespace == nil }

// IsNamespace reports whether o can own children.
func (o *Object) IsNamespace() bool { return o.kind.IsNamespace() }

// IsAlias reports whether o is a constant whose value is a constant path
// ("A", "::A::B") and may therefore name another namespace. A constant
// holding any other value ("5", "Foo.new") is plain data.
func (o *Object) IsAlias() bool { return o.kind == KindConstant && isConstantPath(o.Value()) }

func isConstantPath(v string) bool {
	v = strings.TrimPrefix(v, NSEP)
	if v == "" {
		return false
	}
	for _, seg := range strings.Split(v, NSEP) {
		if !IsConstantName(seg) || strings.ContainsAny(seg, ISEP+CSEP+" ") {
			return false
		}
	}
	return true
}

// Separator returns the separator joining o to its namespace.
func (o *Object) Separator() string {
	switch o.scope {
	case ScopeInstance:
		return ISEP
	case ScopeClass:
		return CSEP
	default:
		return NSEP
	}
}

// Children returns a copy of the child list in declaration order.
func (o *Object) Children() []*Object {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*Object, len(o.children))
	copy(out, o.children)
	return out
}

// Child returns the child joined to o by sep and named name. A class Bar
// and an instance method Bar are different children of the same namespace.
func (o *Object) Child(sep, name string) (*Object, bool) {
	if sep == "" {
		sep = NSEP
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, c := range o.children {
		if c.name == name && c.Separator() == sep {
			return c, true
		}
	}
	return nil, false
}

// Mixins returns a copy of the included namespaces in inclusion order.
func (o *Object) Mixins() []Ref {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Ref, len(o.mixins))
	copy(out, o.mixins)
	return out
}

// LinkedBy reports whether o accepts being named by title in a link.
func (o *Object) LinkedBy(title string) bool {
	o.mu.RLock()
	l := o.linker
	o.mu.RUnlock()
	if l == nil {
		l = NameLinker
	}
	return l.LinkedBy(o, title)
}

// Equal reports whether other denotes o. Deferred references compare
// equal once they resolve to o.
func (o *Object) Equal(other Ref) bool {
	if o == nil || isNilRef(other) {
		return false
	}
	obj, ok := other.Object()
	return ok && obj == o
}

// String returns the path, or "root" for the root sentinel.
func (o *Object) String() string {
	if o.IsRoot() {
		return "root"
	}
	return o.path
}

// isNilRef catches both nil interfaces and typed nil objects.
func isNilRef(r Ref) bool {
	if r == nil {
		return true
	}
	if o, ok := r.(*Object); ok && o == nil {
		return true
	}
	return false
}
