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

package path

import (
	"errors"
	"fmt"
	"strings"

	"dirpx.dev/cref/codeobj"
)

// ErrInvalidOrder is returned by ParseOrder for unknown names.
var ErrInvalidOrder = errors.New("cref(path): invalid search order")

// Order controls where mixins are searched relative to the ancestor walk.
type Order int

const (
	// OrderInterleaved searches each level's mixins right after the level.
	OrderInterleaved Order = iota
	// OrderAncestorsFirst walks every level up to the root before any mixin.
	OrderAncestorsFirst
)

// String returns the configuration spelling of o.
func (o Order) String() string {
	switch o {
	case OrderInterleaved:
		return "interleaved"
	case OrderAncestorsFirst:
		return "ancestors-first"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// ParseOrder parses the configuration spelling of an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "interleaved":
		return OrderInterleaved, nil
	case "ancestors-first", "ancestors_first":
		return OrderAncestorsFirst, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
}

// Origin says which search step produced a Candidate.
type Origin int

const (
	// OriginLiteral is the reference's own joined path, looked up as is.
	OriginLiteral Origin = iota
	// OriginLexical is a level of the enclosing namespace chain.
	OriginLexical
	// OriginMixin is a namespace included by one of those levels.
	OriginMixin
)

// String returns a short name for o.
func (o Origin) String() string {
	switch o {
	case OriginLiteral:
		return "literal"
	case OriginLexical:
		return "lexical"
	case OriginMixin:
		return "mixin"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// Candidate is one step of a search plan.
type Candidate struct {
	Origin Origin
	// Base is the namespace the reference is evaluated in; nil for literals.
	Base *codeobj.Object
	// Path is the exact path looked up by literal candidates.
	Path string
}

// String renders c for diagnostics ("lexical A::B", "literal A::C#run").
func (c Candidate) String() string {
	if c.Origin == OriginLiteral {
		return c.Origin.String() + " " + c.Path
	}
	return c.Origin.String() + " " + c.Base.String()
}

// Plan returns the candidates to try for ref written inside ctx, most
// specific first:
//
//  1. the literal joined path;
//  2. each level from ctx up to the root;
//  3. the mixins of each level, right after the level (OrderInterleaved)
//     or after the whole walk (OrderAncestorsFirst).
//
// Absolute references only get the literal path and the root. Invalid
// references get an empty plan. Plan reads the object graph but never
// touches a registry; its cost is linear in depth times mixin count.
// Mixins that are not namespaces are skipped.
func Plan(ref Reference, ctx *codeobj.Object, order Order) []Candidate {
	return PlanWith(ref, ctx, order, nil)
}

// TargetFunc maps an object to the namespace it stands for, following
// constant aliases.
type TargetFunc func(*codeobj.Object) (*codeobj.Object, bool)

// PlanWith is Plan with mixins that are not namespaces passed through
// target, so "B = A; include B" searches A. A nil target skips them.
func PlanWith(ref Reference, ctx *codeobj.Object, order Order, target TargetFunc) []Candidate {
	if !ref.Valid() {
		return nil
	}
	plan := []Candidate{{Origin: OriginLiteral, Path: ref.Joined()}}

	levels := ancestry(ctx)
	if len(levels) == 0 {
		return plan
	}
	if ref.Absolute {
		return append(plan, Candidate{Origin: OriginLexical, Base: levels[len(levels)-1]})
	}

	seen := make(map[*codeobj.Object]struct{}, len(levels))
	add := func(dst []Candidate, c Candidate) []Candidate {
		if _, dup := seen[c.Base]; dup {
			return dst
		}
		seen[c.Base] = struct{}{}
		return append(dst, c)
	}

	var deferred []Candidate
	for _, lvl := range levels {
		plan = add(plan, Candidate{Origin: OriginLexical, Base: lvl})
		for _, m := range lvl.Mixins() {
			mo, ok := m.Object()
			if ok && !mo.IsNamespace() && target != nil {
				mo, ok = target(mo)
			}
			if !ok || !mo.IsNamespace() {
				continue
			}
			c := Candidate{Origin: OriginMixin, Base: mo}
			if order == OrderAncestorsFirst {
				deferred = append(deferred, c)
				continue
			}
			plan = add(plan, c)
		}
	}
	for _, c := range deferred {
		plan = add(plan, c)
	}
	return plan
}

// ancestry returns ctx followed by its enclosing namespaces up to the root.
func ancestry(ctx *codeobj.Object) []*codeobj.Object {
	var out []*codeobj.Object
	for ns := ctx; ns != nil; ns = ns.Namespace() {
		out = append(out, ns)
	}
	return out
}
