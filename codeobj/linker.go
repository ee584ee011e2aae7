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

// Linker decides whether an object may be named by a link title.
// Objects receive their Linker at construction (WithLinker); there is no
// way to swap the predicate of an existing kind.
type Linker interface {
	LinkedBy(obj *Object, title string) bool
}

// LinkerFunc adapts a function to Linker.
type LinkerFunc func(obj *Object, title string) bool

// LinkedBy calls f.
func (f LinkerFunc) LinkedBy(obj *Object, title string) bool {
	return f(obj, title)
}

var (
	// NameLinker accepts a title equal to the object's own name. It is the
	// default for every object, so a qualified title such as "A::Foo" never
	// names Foo unless the object opts in with its own Linker.
	NameLinker Linker = LinkerFunc(func(obj *Object, title string) bool {
		return title != "" && title == obj.Name()
	})

	// NeverLinker rejects every title.
	NeverLinker Linker = LinkerFunc(func(*Object, string) bool {
		return false
	})
)
