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

// Package proxy implements deferred references to code objects.
//
// A Proxy remembers where a reference was written (its context namespace)
// and what was written (the raw reference and an optional kind hint). Each
// access re-runs resolution until it succeeds; from then on the proxy
// reports the resolved object's path, name, namespace, kind, capabilities
// and identity.
//
// A Proxy is either unresolved (context, raw, hint) or resolved (object).
// Every accessor branches on that state; nothing else is cached.
package proxy

import (
	"errors"
	"fmt"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/codeobj"
	upath "dirpx.dev/cref/utils/path"
)

var (
	// ErrNilResolver is returned when no resolver is supplied.
	ErrNilResolver = errors.New("cref(proxy): nil resolver")
	// ErrInvalidNamespace is returned when the context object cannot
	// contain references (a method, for example).
	ErrInvalidNamespace = errors.New("cref(proxy): invalid namespace object")
)

// ownOps is what an unresolved proxy answers for itself.
var ownOps = codeobj.NewOpSet(
	codeobj.OpPath,
	codeobj.OpName,
	codeobj.OpNamespace,
	codeobj.OpKind,
	codeobj.OpSetKind,
	codeobj.OpEqual,
	codeobj.OpRespondsTo,
	codeobj.OpResolve,
)

// Option configures a Proxy at construction.
type Option func(*Proxy)

// WithKind sets the kind hint. Only objects of that kind will be accepted.
func WithKind(k codeobj.Kind) Option {
	return func(p *Proxy) {
		p.kind = k
	}
}

// Proxy is a deferred reference to a code object.
// It is not safe for concurrent use.
type Proxy struct {
	res  apis.Resolver
	ctx  codeobj.Ref
	raw  string
	ref  upath.Reference
	kind codeobj.Kind

	// obj is set once, on the first successful resolution.
	obj *codeobj.Object
	// resolving breaks cycles such as a mixin proxy resolved from the
	// namespace that includes it.
	resolving bool
}

// Ensure Proxy implements codeobj.Ref.
var _ codeobj.Ref = (*Proxy)(nil)

// New returns a proxy for raw written inside ctx. A nil ctx means the root.
// ctx may itself be a Proxy; resolution then waits until it resolves.
func New(res apis.Resolver, ctx codeobj.Ref, raw string, opts ...Option) (*Proxy, error) {
	if res == nil || res.Registry() == nil {
		return nil, ErrNilResolver
	}
	if isNil(ctx) {
		ctx = res.Registry().Root()
	}
	if obj, ok := ctx.(*codeobj.Object); ok && !obj.IsNamespace() && !obj.IsAlias() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidNamespace, obj.Path(), obj.Kind())
	}

	p := &Proxy{
		res:  res,
		ctx:  ctx,
		raw:  raw,
		ref:  upath.Parse(raw),
		kind: codeobj.KindProxy,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.kind == "" {
		p.kind = codeobj.KindProxy
	}
	return p, nil
}

// Resolve attempts resolution. A successful result is kept; a failed one
// leaves the proxy unresolved so a later call can succeed once the target
// has been defined.
func (p *Proxy) Resolve() (*codeobj.Object, bool) {
	if p.obj != nil {
		return p.obj, true
	}
	if p.resolving {
		return nil, false
	}
	p.resolving = true
	defer func() { p.resolving = false }()

	ns, ok := p.context()
	if !ok {
		return nil, false
	}
	obj, ok := p.res.Resolve(apis.Query{Context: ns, Ref: p.ref, Kind: p.kind})
	if !ok {
		return nil, false
	}
	p.obj = obj
	return obj, true
}

// context returns the namespace to search from. Absolute references
// ignore the written context; alias contexts are replaced by their target.
func (p *Proxy) context() (*codeobj.Object, bool) {
	if p.ref.Absolute {
		return p.res.Registry().Root(), true
	}
	obj, ok := p.ctx.Object()
	if !ok {
		return nil, false
	}
	return p.res.Target(obj, 0)
}

// Object resolves p and returns the object.
func (p *Proxy) Object() (*codeobj.Object, bool) {
	return p.Resolve()
}

// Resolved reports whether p resolves now.
func (p *Proxy) Resolved() bool {
	_, ok := p.Resolve()
	return ok
}

// Kind returns the resolved object's kind, or the kind hint while
// unresolved (KindProxy unless set).
func (p *Proxy) Kind() codeobj.Kind {
	if obj, ok := p.Resolve(); ok {
		return obj.Kind()
	}
	return p.kind
}

// Hint returns the kind hint regardless of resolution.
func (p *Proxy) Hint() codeobj.Kind {
	return p.kind
}

// SetKind changes the kind hint used by later resolution attempts of this
// proxy. It has no effect once p is resolved.
func (p *Proxy) SetKind(k codeobj.Kind) {
	if p.obj != nil {
		return
	}
	if k == "" {
		k = codeobj.KindProxy
	}
	p.kind = k
}

// Path returns the resolved object's path, or a provisional path built
// from the reference and the context.
func (p *Proxy) Path() string {
	if obj, ok := p.Resolve(); ok {
		return obj.Path()
	}
	return p.provisionalPath()
}

func (p *Proxy) provisionalPath() string {
	ref := p.ref
	if ref.Absolute || p.contextIsRoot() {
		return ref.Joined()
	}
	if len(ref.Segments) > 0 {
		if codeobj.IsConstantName(ref.Segments[0]) {
			return ref.Joined()
		}
		return codeobj.Join(p.ctx.Path(), codeobj.NSEP, ref.Joined())
	}
	sep := ref.Sep
	if sep == "" {
		sep = codeobj.CSEP
		if codeobj.IsConstantName(ref.Leaf) {
			sep = codeobj.NSEP
		}
	}
	return codeobj.Join(p.ctx.Path(), sep, ref.Leaf)
}

func (p *Proxy) contextIsRoot() bool {
	obj, ok := p.ctx.Object()
	return ok && obj.IsRoot()
}

// Name returns the resolved object's name, or the reference's leaf.
func (p *Proxy) Name() string {
	if obj, ok := p.Resolve(); ok {
		return obj.Name()
	}
	return p.ref.Leaf
}

// Namespace returns the resolved object's namespace. While unresolved it
// returns a proxy for the reference's prefix ("A::B" for "A::B#run"), the
// root for absolute names, or the context.
func (p *Proxy) Namespace() codeobj.Ref {
	if obj, ok := p.Resolve(); ok {
		if ns := obj.Namespace(); ns != nil {
			return ns
		}
		return nil
	}
	if len(p.ref.Segments) > 0 {
		return &Proxy{
			res:  p.res,
			ctx:  p.ctx,
			raw:  p.ref.Prefix(),
			ref:  upath.Parse(p.ref.Prefix()),
			kind: codeobj.KindProxy,
		}
	}
	if p.ref.Absolute {
		return p.res.Registry().Root()
	}
	return p.ctx
}

// Mixins returns the resolved object's mixins; nil while unresolved.
func (p *Proxy) Mixins() []codeobj.Ref {
	if obj, ok := p.Resolve(); ok {
		return obj.Mixins()
	}
	return nil
}

// Children returns the resolved object's children; nil while unresolved.
func (p *Proxy) Children() []*codeobj.Object {
	if obj, ok := p.Resolve(); ok {
		return obj.Children()
	}
	return nil
}

// Equal reports whether p and other denote the same object. A resolved
// proxy equals anything that resolves to the same object, including the
// object itself. An unresolved proxy only equals another unresolved proxy
// written identically (same context, raw reference and kind hint); it
// never equals a concrete object, the root included.
func (p *Proxy) Equal(other codeobj.Ref) bool {
	if isNil(other) {
		return false
	}
	if obj, ok := p.Resolve(); ok {
		o, ok := other.Object()
		return ok && o == obj
	}
	q, ok := other.(*Proxy)
	if !ok {
		return false
	}
	if q == p {
		return true
	}
	if q.Resolved() {
		return false
	}
	return q.raw == p.raw && q.kind == p.kind && sameRef(p.ctx, q.ctx)
}

// RespondsTo reports whether op is supported. A resolved proxy answers
// for its object. An unresolved proxy answers for its own operations, and
// optimistically says yes to anything when includePrivate is set.
func (p *Proxy) RespondsTo(op codeobj.Op, includePrivate bool) bool {
	if obj, ok := p.Resolve(); ok {
		return obj.RespondsTo(op, includePrivate)
	}
	return includePrivate || ownOps.Has(op)
}

// Raw returns the reference as written.
func (p *Proxy) Raw() string { return p.raw }

// Reference returns the parsed reference.
func (p *Proxy) Reference() upath.Reference { return p.ref }

// Context returns the context the reference was written in.
func (p *Proxy) Context() codeobj.Ref { return p.ctx }

// String returns the resolved path, or "proxy(<provisional path>)".
func (p *Proxy) String() string {
	if obj, ok := p.Resolve(); ok {
		return obj.String()
	}
	return "proxy(" + p.provisionalPath() + ")"
}

func sameRef(a, b codeobj.Ref) bool {
	return a == b || a.Equal(b)
}

func isNil(r codeobj.Ref) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *codeobj.Object:
		return v == nil
	case *Proxy:
		return v == nil
	}
	return false
}
