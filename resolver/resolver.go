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

package resolver

import (
	"log/slog"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/config"
	"dirpx.dev/cref/logging"
	upath "dirpx.dev/cref/utils/path"
)

// New constructs an apis.Resolver that runs the given strategies, in order,
// on every candidate of a search plan. Nil strategies are ignored.
func New(reg apis.Registry, cfg apis.Config, strategies ...apis.Strategy) apis.Resolver {
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]apis.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	if cfg.MaxAliasDepth <= 0 {
		cfg.MaxAliasDepth = config.DefaultMaxAliasDepth
	}
	return &chain{
		reg:    reg,
		cfg:    cfg,
		strats: out,
		log:    logging.OrDiscard(cfg.Logger),
	}
}

// chain is an immutable, order-preserving resolver over a set of strategies.
type chain struct {
	reg    apis.Registry
	cfg    apis.Config
	strats []apis.Strategy
	log    *slog.Logger
}

// Ensure chain implements apis.Resolver.
var _ apis.Resolver = (*chain)(nil)

// Registry returns the registry queries run against.
func (r *chain) Registry() apis.Registry {
	return r.reg
}

// Plan returns the search plan for q. A nil context means the root.
func (r *chain) Plan(q apis.Query) []upath.Candidate {
	ctx := q.Context
	if ctx == nil && r.reg != nil {
		ctx = r.reg.Root()
	}
	return upath.PlanWith(q.Ref, ctx, r.cfg.SearchOrder, func(o *codeobj.Object) (*codeobj.Object, bool) {
		return r.Target(o, q.Depth)
	})
}

// Each runs the plan and reports every distinct match in plan order.
// For each candidate the first strategy that handles it wins.
func (r *chain) Each(q apis.Query, fn func(*codeobj.Object) bool) {
	if r.reg == nil || q.Depth > r.cfg.MaxAliasDepth {
		return
	}
	seen := make(map[*codeobj.Object]struct{})
	for _, c := range r.Plan(q) {
		for _, s := range r.strats {
			obj, ok := s.TryCandidate(c, q, r)
			if !ok {
				continue
			}
			if _, dup := seen[obj]; !dup {
				seen[obj] = struct{}{}
				if !fn(obj) {
					return
				}
			}
			break
		}
	}
}

// Resolve returns the first match of q.
func (r *chain) Resolve(q apis.Query) (obj *codeobj.Object, found bool) {
	r.Each(q, func(o *codeobj.Object) bool {
		obj, found = o, true
		return false
	})
	if !found {
		r.log.Debug("unresolved reference",
			slog.String("ref", q.Ref.Raw),
			slog.String("context", contextPath(q.Context)),
			slog.String("kind", q.Kind.String()))
	}
	return obj, found
}

// Target follows constant aliases until it reaches a namespace. An alias's
// value is resolved from the alias's own namespace.
func (r *chain) Target(obj *codeobj.Object, depth int) (*codeobj.Object, bool) {
	for ; obj != nil; depth++ {
		if obj.IsNamespace() {
			return obj, true
		}
		if !obj.IsAlias() {
			return nil, false
		}
		if depth >= r.cfg.MaxAliasDepth {
			r.log.Warn("alias chain too deep", slog.String("path", obj.Path()), slog.Int("max", r.cfg.MaxAliasDepth))
			return nil, false
		}
		next, ok := r.Resolve(apis.Query{
			Context: obj.Namespace(),
			Ref:     upath.Parse(obj.Value()),
			Depth:   depth + 1,
		})
		if !ok || next == obj {
			return nil, false
		}
		obj = next
	}
	return nil, false
}

func contextPath(ctx *codeobj.Object) string {
	if ctx == nil {
		return "root"
	}
	return ctx.String()
}
