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

// Package link resolves documentation link text ("{Class: Foo}") to the
// code object it names.
//
// A link keyword is bound to a kind in the registry. Resolution searches
// for the title with that kind as constraint and returns the first
// candidate that accepts being named by the title (codeobj.Object.LinkedBy).
package link

import (
	"strings"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/codeobj"
	upath "dirpx.dev/cref/utils/path"
)

// Resolver resolves link keywords and titles.
type Resolver struct {
	res apis.Resolver
}

// New returns a link Resolver running its searches through res.
func New(res apis.Resolver) *Resolver {
	return &Resolver{res: res}
}

// Resolve resolves title for keyword from the root namespace.
// An empty title or an unregistered keyword is simply no match.
func (l *Resolver) Resolve(keyword, title string) (*codeobj.Object, bool) {
	return l.ResolveFrom(nil, keyword, title)
}

// ResolveFrom is Resolve with an explicit context namespace. A context
// that does not resolve yields no match.
func (l *Resolver) ResolveFrom(ctx codeobj.Ref, keyword, title string) (obj *codeobj.Object, found bool) {
	if l == nil || l.res == nil || strings.TrimSpace(title) == "" {
		return nil, false
	}
	reg := l.res.Registry()
	kind, ok := reg.LinkKind(keyword)
	if !ok {
		return nil, false
	}

	ns := reg.Root()
	if ctx != nil {
		o, ok := ctx.Object()
		if !ok {
			return nil, false
		}
		if ns, ok = l.res.Target(o, 0); !ok {
			return nil, false
		}
	}

	q := apis.Query{Context: ns, Ref: upath.Parse(title), Kind: kind}
	l.res.Each(q, func(c *codeobj.Object) bool {
		if c.LinkedBy(title) {
			obj, found = c, true
			return false
		}
		return true
	})
	return obj, found
}
