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
	"strings"

	"dirpx.dev/cref/codeobj"
)

// Reference is a parsed reference string.
//
// Grammar, informally:
//
//	ref    := ["::"] [ns] leaf
//	ns     := seg { "::" seg }
//	leaf   := name | "#" name | "." name        (method leaves follow ns directly)
//
// "A::B#run" has Segments [A B], Sep "#" and Leaf "run". "A::B" has Segments
// [A], Sep "::" and Leaf "B". "run" has no segments and no separator.
type Reference struct {
	// Raw is the reference as written.
	Raw string
	// Absolute is set by a leading "::"; the context is ignored.
	Absolute bool
	// Segments are the namespace levels before the leaf.
	Segments []string
	// Sep is the separator that introduced the leaf ("" when there is none).
	Sep string
	// Leaf is the local name being looked up.
	Leaf string
}

// Parse splits raw into a Reference. It never fails; malformed input yields
// a Reference for which Valid reports false.
func Parse(raw string) Reference {
	r := Reference{Raw: raw}
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, codeobj.NSEP) {
		r.Absolute = true
		s = s[len(codeobj.NSEP):]
	}

	if i := strings.IndexAny(s, codeobj.ISEP+codeobj.CSEP); i >= 0 {
		r.Sep = s[i : i+1]
		r.Leaf = s[i+1:]
		if prefix := s[:i]; prefix != "" {
			r.Segments = strings.Split(prefix, codeobj.NSEP)
		}
		return r
	}

	parts := strings.Split(s, codeobj.NSEP)
	r.Leaf = parts[len(parts)-1]
	if len(parts) > 1 {
		r.Segments = parts[:len(parts)-1]
		r.Sep = codeobj.NSEP
	}
	return r
}

// Valid reports whether r can name anything at all.
func (r Reference) Valid() bool {
	if !codeobj.ValidName(r.Leaf) {
		return false
	}
	for _, seg := range r.Segments {
		if !codeobj.ValidName(seg) {
			return false
		}
	}
	return true
}

// IsMethod reports whether the leaf was introduced by a method separator.
func (r Reference) IsMethod() bool {
	return r.Sep == codeobj.ISEP || r.Sep == codeobj.CSEP
}

// Prefix returns the namespace part ("A::B" for "A::B#run"), keeping a
// leading "::" for absolute references. It is empty when r has no segments.
func (r Reference) Prefix() string {
	if len(r.Segments) == 0 {
		return ""
	}
	p := strings.Join(r.Segments, codeobj.NSEP)
	if r.Absolute {
		p = codeobj.NSEP + p
	}
	return p
}

// Joined returns the canonical path spelled by r, without a leading "::".
func (r Reference) Joined() string {
	return codeobj.Join(strings.Join(r.Segments, codeobj.NSEP), r.Sep, r.Leaf)
}

// LeafSeparators lists the separators tried, in order, when looking the
// leaf up inside a namespace. A bare name may be a constant, a class method
// or an instance method; "A::b" may still be a class method call.
func (r Reference) LeafSeparators() []string {
	switch r.Sep {
	case codeobj.ISEP:
		return []string{codeobj.ISEP}
	case codeobj.CSEP:
		return []string{codeobj.CSEP}
	case codeobj.NSEP:
		return []string{codeobj.NSEP, codeobj.CSEP}
	default:
		return []string{codeobj.NSEP, codeobj.CSEP, codeobj.ISEP}
	}
}

// String returns the canonical spelling of r.
func (r Reference) String() string {
	if r.Absolute {
		return codeobj.NSEP + r.Joined()
	}
	return r.Joined()
}
