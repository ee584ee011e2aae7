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

// NewLiteralStrategy creates an apis.Strategy that looks literal candidates
// up in the registry's canonical-path index.
func NewLiteralStrategy() apis.Strategy {
	return &literalStrategy{}
}

// literalStrategy is the zero-search fast path: the reference, joined,
// is already a canonical path.
type literalStrategy struct{}

// Ensure literalStrategy implements apis.Strategy.
var _ apis.Strategy = (*literalStrategy)(nil)

// TryCandidate handles OriginLiteral candidates only.
func (*literalStrategy) TryCandidate(c upath.Candidate, q apis.Query, res apis.Resolver) (*codeobj.Object, bool) {
	if c.Origin != upath.OriginLiteral || c.Path == "" || res == nil {
		return nil, false
	}
	obj, ok := res.Registry().At(c.Path)
	if !ok || obj.IsRoot() || !q.Kind.Matches(obj.Kind()) {
		return nil, false
	}
	return obj, true
}
