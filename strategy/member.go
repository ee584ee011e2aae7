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

package strategy

import (
	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/codeobj"
	upath "dirpx.dev/cref/utils/path"
)

// NewMemberStrategy creates an apis.Strategy that evaluates a reference
// inside a candidate namespace (an enclosing level or one of its mixins).
func NewMemberStrategy() apis.Strategy {
	return &memberStrategy{}
}

// memberStrategy walks the reference's namespace segments from the
// candidate base, then tries the leaf with each allowed separator.
//
// A segment that names a constant alias continues from the alias's target,
// so with "B = A", "B::C" is looked up as "A::C".
type memberStrategy struct{}

// Ensure memberStrategy implements apis.Strategy.
var _ apis.Strategy = (*memberStrategy)(nil)

// TryCandidate handles OriginLexical and OriginMixin candidates.
func (*memberStrategy) TryCandidate(c upath.Candidate, q apis.Query, res apis.Resolver) (*codeobj.Object, bool) {
	if c.Origin == upath.OriginLiteral || c.Base == nil || res == nil {
		return nil, false
	}
	reg := res.Registry()

	ns := c.Base
	for _, seg := range q.Ref.Segments {
		next, ok := reg.At(codeobj.Join(ns.Path(), codeobj.NSEP, seg))
		if !ok {
			return nil, false
		}
		if !next.IsNamespace() {
			if next, ok = res.Target(next, q.Depth+1); !ok {
				return nil, false
			}
		}
		ns = next
	}

	for _, sep := range q.Ref.LeafSeparators() {
		obj, ok := reg.At(codeobj.Join(ns.Path(), sep, q.Ref.Leaf))
		if ok && !obj.IsRoot() && q.Kind.Matches(obj.Kind()) {
			return obj, true
		}
	}
	return nil, false
}
