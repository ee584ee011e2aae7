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

package registry_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/registry"
)

func TestDefine_AndAt(t *testing.T) {
	reg := registry.New()

	a, err := reg.Define(nil, "A", codeobj.KindModule)
	if err != nil {
		t.Fatalf("Define(A): unexpected error: %v", err)
	}
	b, err := reg.Define(a, "B", codeobj.KindClass)
	if err != nil {
		t.Fatalf("Define(A::B): unexpected error: %v", err)
	}
	run, err := reg.Define(b, "run", codeobj.KindMethod)
	if err != nil {
		t.Fatalf("Define(A::B#run): unexpected error: %v", err)
	}

	for path, want := range map[string]*codeobj.Object{
		"A":        a,
		"A::B":     b,
		"::A::B":   b,
		"A::B#run": run,
	} {
		if got, ok := reg.At(path); !ok || got != want {
			t.Fatalf("At(%q): got (%v,%v), want (%v,true)", path, got, ok, want)
		}
	}
	if got, ok := reg.At(""); !ok || got != reg.Root() {
		t.Fatalf("At(\"\"): got (%v,%v), want root", got, ok)
	}
	if _, ok := reg.At("A::C"); ok {
		t.Fatalf("At(A::C): unexpected hit")
	}
	if kids := reg.Root().Children(); len(kids) != 1 || kids[0] != a {
		t.Fatalf("root children = %v, want [A]", kids)
	}
	if reg.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", reg.Count())
	}
}

func TestDefine_ReopenMergesMixins(t *testing.T) {
	reg := registry.New()
	m1, _ := reg.Define(nil, "M1", codeobj.KindModule)
	m2, _ := reg.Define(nil, "M2", codeobj.KindModule)

	c1, err := reg.Define(nil, "C", codeobj.KindClass, codeobj.WithMixins(m1))
	if err != nil {
		t.Fatalf("Define(C): %v", err)
	}
	c2, err := reg.Define(nil, "C", codeobj.KindClass, codeobj.WithMixins(m1, m2))
	if err != nil {
		t.Fatalf("reopen C: %v", err)
	}
	if c1 != c2 {
		t.Fatalf("reopen returned a new object")
	}
	if got := c1.Mixins(); len(got) != 2 || got[0] != m1 || got[1] != m2 {
		t.Fatalf("Mixins() = %v, want [M1 M2]", got)
	}
	if reg.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", reg.Count())
	}
}

func TestDefine_ReopenAppliesValueAndLinker(t *testing.T) {
	reg := registry.New()
	k1, err := reg.Define(nil, "K", codeobj.KindConstant, codeobj.WithValue("A"))
	if err != nil {
		t.Fatalf("Define(K): %v", err)
	}
	k2, err := reg.Define(nil, "K", codeobj.KindConstant, codeobj.WithValue("B"), codeobj.WithLinker(codeobj.NeverLinker))
	if err != nil {
		t.Fatalf("reopen K: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("reopen returned a new object")
	}
	if k1.Value() != "B" {
		t.Fatalf("Value() = %q, want the reopening value B", k1.Value())
	}
	if k1.LinkedBy("K") {
		t.Fatalf("reopening linker was dropped")
	}

	// A reopening without a value or linker keeps both.
	if _, err := reg.Define(nil, "K", codeobj.KindConstant); err != nil {
		t.Fatalf("reopen K: %v", err)
	}
	if k1.Value() != "B" || k1.LinkedBy("K") {
		t.Fatalf("bare reopen reset value or linker: value=%q", k1.Value())
	}
}

func TestDefine_Errors(t *testing.T) {
	var logs bytes.Buffer
	reg := registry.New(registry.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	a, _ := reg.Define(nil, "A", codeobj.KindModule)
	if _, err := reg.Define(nil, "A", codeobj.KindClass); !errors.Is(err, registry.ErrConflictingDefinition) {
		t.Fatalf("redefine kind: want ErrConflictingDefinition, got %v", err)
	}
	if !strings.Contains(logs.String(), "conflicting definition") {
		t.Fatalf("conflict not logged: %q", logs.String())
	}

	run, _ := reg.Define(a, "run", codeobj.KindMethod)
	if _, err := reg.Define(run, "x", codeobj.KindConstant); !errors.Is(err, registry.ErrInvalidNamespace) {
		t.Fatalf("method owner: want ErrInvalidNamespace, got %v", err)
	}
	if _, err := reg.Define(a, "B::C", codeobj.KindModule); !errors.Is(err, registry.ErrInvalidName) {
		t.Fatalf("qualified name: want ErrInvalidName, got %v", err)
	}
	if _, err := reg.Define(a, "", codeobj.KindModule); !errors.Is(err, registry.ErrInvalidName) {
		t.Fatalf("empty name: want ErrInvalidName, got %v", err)
	}

	other := registry.New()
	foreign, _ := other.Define(nil, "F", codeobj.KindModule)
	if _, err := reg.Define(foreign, "X", codeobj.KindModule); !errors.Is(err, registry.ErrForeignNamespace) {
		t.Fatalf("foreign owner: want ErrForeignNamespace, got %v", err)
	}
}

func TestRegisterLink(t *testing.T) {
	reg := registry.New()

	if len(reg.Links()) != 0 {
		t.Fatalf("new registry has links: %v", reg.Links())
	}
	if err := reg.RegisterLink("Class:", codeobj.KindClass); err != nil {
		t.Fatalf("RegisterLink: %v", err)
	}
	// idempotent
	if err := reg.RegisterLink("Class:", codeobj.KindClass); err != nil {
		t.Fatalf("RegisterLink idempotent: %v", err)
	}
	// distinct keywords may share a kind
	if err := reg.RegisterLink("Module:", codeobj.KindClass); err != nil {
		t.Fatalf("RegisterLink(Module:): %v", err)
	}
	// first binding wins
	if err := reg.RegisterLink("Class:", codeobj.KindModule); !errors.Is(err, registry.ErrConflictingLink) {
		t.Fatalf("rebind: want ErrConflictingLink, got %v", err)
	}
	if k, ok := reg.LinkKind("Class:"); !ok || k != codeobj.KindClass {
		t.Fatalf("LinkKind(Class:) = (%v,%v), want (class,true)", k, ok)
	}
	if _, ok := reg.LinkKind("Method:"); ok {
		t.Fatalf("LinkKind(Method:): unexpected hit")
	}
	if err := reg.RegisterLink("", codeobj.KindClass); err != registry.ErrEmptyKeyword {
		t.Fatalf("empty keyword: want ErrEmptyKeyword, got %v", err)
	}

	links := reg.Links()
	links["Hacked:"] = codeobj.KindMethod
	if _, ok := reg.LinkKind("Hacked:"); ok {
		t.Fatalf("Links() must return a copy")
	}
}

func TestEntriesAndClear(t *testing.T) {
	reg := registry.New()
	root := reg.Root()

	b, _ := reg.Define(nil, "B", codeobj.KindModule)
	_, _ = reg.Define(nil, "A", codeobj.KindModule)
	_, _ = reg.Define(b, "run", codeobj.KindMethod)
	_ = reg.RegisterLink("Class:", codeobj.KindClass)

	var paths []string
	for _, e := range reg.Entries() {
		paths = append(paths, e.Path())
	}
	if got := strings.Join(paths, ","); got != "A,B,B#run" {
		t.Fatalf("Entries() = %s, want A,B,B#run", got)
	}

	reg.Clear()

	if reg.Count() != 0 || len(reg.Entries()) != 0 {
		t.Fatalf("after Clear, Count() = %d", reg.Count())
	}
	if len(reg.Links()) != 0 {
		t.Fatalf("after Clear, Links() = %v", reg.Links())
	}
	if reg.Root() != root {
		t.Fatalf("root changed identity across Clear")
	}
	if len(root.Children()) != 0 {
		t.Fatalf("root kept children across Clear")
	}
	if _, ok := reg.At("B"); ok {
		t.Fatalf("At(B) after Clear: unexpected hit")
	}
	// Objects from before Clear no longer belong to the registry.
	if _, err := reg.Define(b, "C", codeobj.KindModule); !errors.Is(err, registry.ErrForeignNamespace) {
		t.Fatalf("stale owner: want ErrForeignNamespace, got %v", err)
	}
}
