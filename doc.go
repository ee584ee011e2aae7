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

// Package cref resolves references between documented code objects.
//
// A documentation generator scanning source meets references (superclasses,
// mixins, link tags, method targets) before, or without, meeting the
// declarations they name: files are read in arbitrary order and some names
// belong to external code. cref records such references as proxies and
// resolves them lazily against a registry of code objects.
//
// # Design
//
// The core of cref is a read-mostly global snapshot (state). The snapshot
// holds four things:
//
//   - Config: knobs that control resolution (mixin search order, alias
//     depth guard, default link keywords, logger).
//
//   - Registry: the canonical-path index of every code object, the root
//     sentinel and the link keyword table. The parse phase writes it
//     through Define and RegisterLink.
//
//   - Resolver: runs a search plan against the registry. For a reference
//     written inside namespace N it tries, in order:
//     1. the reference's literal path;
//     2. N, then every enclosing namespace up to the root;
//     3. the mixins of each of those levels.
//     Intermediate segments bound to constant aliases are followed, and a
//     kind hint filters out same-named objects of other kinds.
//
//   - Builder: constructs Registry and Resolver for a Config.
//
// All of these live inside a single immutable struct. The package holds an
// atomic pointer to the current state; readers load it and never mutate
// it, writers build a new state and swap it in.
//
// # Proxies
//
//	p := cref.P("Foo::Bar#run")
//	p.Kind()     // codeobj.KindProxy until Foo::Bar#run is defined
//	p.Path()     // "Foo::Bar#run", provisional
//	...          // the parser defines Foo, Foo::Bar and Foo::Bar#run
//	p.Kind()     // codeobj.KindMethod
//	p.Equal(obj) // true
//
// A proxy re-attempts resolution on every access while unresolved and
// behaves as the resolved object afterwards. Resolution failures are
// ordinary results, never errors.
//
// # Links
//
//	cref.RegisterLink("Class:", codeobj.KindClass)
//	obj, ok := cref.ResolveLink("Class:", "Foo")
//
// Link resolution searches for the title with the keyword's kind and
// returns the first object whose LinkedBy predicate accepts the title.
//
// # Global API
//
//  1. Domain helpers: Root, At, Define, RegisterLink, Links, Clear, P,
//     Proxy, ResolveLink.
//
//  2. Snapshot access: Config, Registry, Resolver, Builder, ExtAs.
//
//  3. Mutation: SetConfig, SetBuilder, SetExt, SetRegistry, SetResolver,
//     SetAll, and the Pin/Unpin pairs. SetRegistry and SetResolver pin the
//     layer they replace; pinned layers are not rebuilt by later
//     configuration changes until unpinned.
//
// The standard builder keeps the existing registry across rebuilds, so
// objects defined before a SetConfig stay visible. Use Clear between
// independent documentation runs.
//
// # Concurrency model
//
// Resolution is meant to run after (or interleaved with) a single parse
// pass on one goroutine. Snapshot reads are wait-free, the registry guards
// its maps with a RWMutex, and proxies are not safe for concurrent use.
package cref
