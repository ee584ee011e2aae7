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

package apis

import (
	"dirpx.dev/cref/codeobj"
	upath "dirpx.dev/cref/utils/path"
)

// Query is a single resolution request.
type Query struct {
	// Context is the namespace the reference was written in. Nil means root.
	Context *codeobj.Object
	// Ref is the parsed reference.
	Ref upath.Reference
	// Kind constrains the result; the wildcard accepts anything.
	Kind codeobj.Kind
	// Depth counts nested alias resolutions.
	Depth int
}

// Resolver executes search plans against a Registry.
// Resolution is a query: it never mutates the registry and may be repeated
// as often as callers like.
type Resolver interface {
	// Resolve returns the first object matching q, or (nil, false).
	Resolve(q Query) (*codeobj.Object, bool)
	// Each calls fn for every distinct match of q in plan order until fn
	// returns false.
	Each(q Query, fn func(*codeobj.Object) bool)
	// Plan returns the candidates q would try.
	Plan(q Query) []upath.Candidate
	// Target follows constant aliases until it reaches a namespace.
	// Namespaces are returned as is.
	Target(obj *codeobj.Object, depth int) (*codeobj.Object, bool)
	// Registry returns the registry queries run against.
	Registry() Registry
}
