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

// Op names an operation a code object may support. Capability queries are
// answered from static tables, so the set of operations for a kind cannot
// change at runtime.
type Op string

const (
	OpPath       Op = "path"
	OpName       Op = "name"
	OpNamespace  Op = "namespace"
	OpKind       Op = "kind"
	OpEqual      Op = "equal"
	OpRespondsTo Op = "responds_to"
	OpLinkedBy   Op = "linked_by"
	OpChildren   Op = "children"
	OpMixins     Op = "mixins"
	OpInclude    Op = "include"
	OpValue      Op = "value"
	OpScope      Op = "scope"
	OpResolve    Op = "resolve"
	OpSetKind    Op = "set_kind"

	// Private operations, only reported when the caller asks for them.
	OpInitialize Op = "initialize"
	OpAttach     Op = "attach"
	OpPrune      Op = "prune"
)

// OpSet is an immutable set of operations.
type OpSet map[Op]struct{}

// NewOpSet returns a set holding ops.
func NewOpSet(ops ...Op) OpSet {
	s := make(OpSet, len(ops))
	for _, op := range ops {
		s[op] = struct{}{}
	}
	return s
}

// Has reports whether op is in s.
func (s OpSet) Has(op Op) bool {
	_, ok := s[op]
	return ok
}

var (
	baseOps      = NewOpSet(OpPath, OpName, OpNamespace, OpKind, OpEqual, OpRespondsTo, OpLinkedBy)
	namespaceOps = NewOpSet(OpChildren, OpMixins, OpInclude)
	privateOps   = NewOpSet(OpInitialize, OpAttach, OpPrune)
	kindOps      = map[Kind]OpSet{
		KindRoot:     namespaceOps,
		KindModule:   namespaceOps,
		KindClass:    namespaceOps,
		KindConstant: NewOpSet(OpValue),
		KindMethod:   NewOpSet(OpScope),
	}
)

// RespondsTo reports whether o supports op. Private operations are only
// reported when includePrivate is set.
func (o *Object) RespondsTo(op Op, includePrivate bool) bool {
	if baseOps.Has(op) || kindOps[o.kind].Has(op) {
		return true
	}
	return includePrivate && privateOps.Has(op)
}
