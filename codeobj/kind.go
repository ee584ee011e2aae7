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

import (
	"errors"
	"fmt"
	"strings"
)

// Path separators.
const (
	// NSEP separates namespace segments ("A::B").
	NSEP = "::"
	// ISEP attaches an instance method to its namespace ("A#run").
	ISEP = "#"
	// CSEP attaches a class (singleton) method to its namespace ("A.run").
	CSEP = "."
)

// ErrInvalidKind is returned by ParseKind for malformed kind names.
var ErrInvalidKind = errors.New("cref(codeobj): invalid kind")

// Kind tags what a code object is. The set is open: parsers may introduce
// their own kinds, which are compared as opaque tags.
type Kind string

const (
	// KindProxy is the wildcard kind. As a constraint it matches anything;
	// as a reported kind it means "not resolved yet".
	KindProxy Kind = "proxy"
	// KindRoot is the kind of the registry's root sentinel.
	KindRoot Kind = "root"
	// KindModule is a module namespace.
	KindModule Kind = "module"
	// KindClass is a class namespace.
	KindClass Kind = "class"
	// KindMethod is an instance or class method.
	KindMethod Kind = "method"
	// KindConstant is a constant, possibly aliasing another namespace.
	KindConstant Kind = "constant"
)

// String returns the display form of k. The wildcard displays as "unresolved".
func (k Kind) String() string {
	if k.IsWildcard() {
		return "unresolved"
	}
	return string(k)
}

// IsWildcard reports whether k constrains nothing.
func (k Kind) IsWildcard() bool {
	return k == KindProxy || k == ""
}

// Matches reports whether an object of kind other satisfies k used as a
// constraint.
func (k Kind) Matches(other Kind) bool {
	return k.IsWildcard() || k == other
}

// IsNamespace reports whether objects of kind k can own children.
func (k Kind) IsNamespace() bool {
	switch k {
	case KindRoot, KindModule, KindClass:
		return true
	}
	return false
}

// ParseKind converts user input ("class", ":class", "Method") into a Kind.
// "unresolved" and "proxy" both yield KindProxy.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ":"))
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKind)
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
		}
	}
	if s == "unresolved" {
		return KindProxy, nil
	}
	return Kind(s), nil
}

// Scope distinguishes instance methods from class methods.
type Scope int

const (
	// ScopeNone is used by everything that is not a method.
	ScopeNone Scope = iota
	// ScopeInstance marks instance methods (joined with ISEP).
	ScopeInstance
	// ScopeClass marks class methods (joined with CSEP).
	ScopeClass
)

// String returns a short name for s.
func (s Scope) String() string {
	switch s {
	case ScopeInstance:
		return "instance"
	case ScopeClass:
		return "class"
	default:
		return "none"
	}
}

// Join builds a canonical path from a namespace path, a separator and a
// local name. The root namespace has the empty path, so top-level names
// joined with NSEP have no prefix while top-level methods keep their
// separator ("#run").
func Join(nsPath, sep, name string) string {
	if sep == "" {
		sep = NSEP
	}
	if nsPath == "" {
		if sep == NSEP {
			return name
		}
		return sep + name
	}
	return nsPath + sep + name
}

// IsConstantName reports whether name is spelled like a constant
// (leading upper-case letter).
func IsConstantName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}
