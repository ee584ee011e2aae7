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
)

// Registry is the store of every known code object, indexed by canonical
// path, plus the root sentinel and the link keyword table.
type Registry interface {
	// At returns the object registered under path. No namespace-relative
	// search is done; "" is the root.
	At(path string) (*codeobj.Object, bool)
	// Root returns the root sentinel. Same identity for the registry's lifetime.
	Root() *codeobj.Object
	// Define creates (or reopens) the object name of the given kind inside ns.
	// A nil ns means the root.
	Define(ns *codeobj.Object, name string, kind codeobj.Kind, opts ...codeobj.Option) (*codeobj.Object, error)
	// RegisterLink binds a link keyword to a kind. Idempotent for the same pair.
	RegisterLink(keyword string, kind codeobj.Kind) error
	// LinkKind returns the kind bound to keyword.
	LinkKind(keyword string) (codeobj.Kind, bool)
	// Links returns a copy of the keyword table.
	Links() map[string]codeobj.Kind
	// Entries returns every object except the root, sorted by path.
	Entries() []*codeobj.Object
	// Count returns the number of registered objects (root excluded).
	Count() int
	// Clear removes every object and keyword. The root survives.
	Clear()
}
