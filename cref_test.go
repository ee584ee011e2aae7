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

package cref

import (
	"errors"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/builder"
	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/config"
	"dirpx.dev/cref/proxy"
	"dirpx.dev/cref/registry"
	"dirpx.dev/cref/resolver"
	"dirpx.dev/cref/strategy"
	upath "dirpx.dev/cref/utils/path"
)

// Reset to a clean snapshot using our test builder.
// This fully replaces builder, config, ext and rebuilds registry/resolver.
// Pins are reset (preg=false, pres=false) because we pass nil reg/res.
// The default builder and a fresh registry are restored afterwards.
func resetWithBuilder(tb testing.TB, b apis.Builder, cfg apis.Config, ext any) {
	tb.Helper()
	SetAll(&cfg, ext, nil, nil, b)
	tb.Cleanup(func() {
		def := config.DefaultConfig()
		SetAll(&def, nil, registry.New(), nil, builder.New())
		UnpinRegistry()
	})
}

func testCfg(order upath.Order, depth int) apis.Config {
	return config.NewConfig(config.WithSearchOrder(order), config.WithMaxAliasDepth(depth))
}

// ---------------------- Test doubles (mocks) ----------------------

// mockRegistry is a real registry tagged with the build that produced it.
type mockRegistry struct {
	apis.Registry
	id string
}

func newMockRegistry(id string) *mockRegistry {
	return &mockRegistry{Registry: registry.New(), id: id}
}

// mockResolver is a real resolver tagged with the build that produced it.
type mockResolver struct {
	apis.Resolver
	id string
}

func newMockResolver(id string, cfg apis.Config, reg apis.Registry) *mockResolver {
	if reg == nil {
		reg = registry.New()
	}
	return &mockResolver{
		Resolver: resolver.New(reg, cfg, strategy.NewLiteralStrategy(), strategy.NewMemberStrategy()),
		id:       id,
	}
}

type mockBuilder struct {
	mu             sync.Mutex
	lastCfg        apis.Config
	lastExt        any
	lastPrevRegID  string
	lastPrevResID  string
	regCounter     int
	resCounter     int
	returnFixedReg apis.Registry // optional override
	returnFixedRes apis.Resolver // optional override
}

func (b *mockBuilder) BuildRegistry(cfg apis.Config, prev apis.Registry, ext any) apis.Registry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCfg, b.lastExt = cfg, ext
	if prev != nil {
		if mr, ok := prev.(*mockRegistry); ok {
			b.lastPrevRegID = mr.id
		}
	}
	if b.returnFixedReg != nil {
		return b.returnFixedReg
	}
	b.regCounter++
	return newMockRegistry("reg#" + strconv.Itoa(b.regCounter))
}

func (b *mockBuilder) BuildResolver(cfg apis.Config, reg apis.Registry, prev apis.Resolver, ext any) apis.Resolver {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCfg, b.lastExt = cfg, ext
	if prev != nil {
		if mr, ok := prev.(*mockResolver); ok {
			b.lastPrevResID = mr.id
		}
	}
	if b.returnFixedRes != nil {
		return b.returnFixedRes
	}
	b.resCounter++
	return newMockResolver("res#"+strconv.Itoa(b.resCounter), cfg, reg)
}

// ---------------------- Tests ----------------------

func TestSetConfig_Rebuilds_Unpinned(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, testCfg(upath.OrderInterleaved, 8), nil)

	// snapshot 1
	s1Reg := Registry()
	s1Res := Resolver()

	// change cfg -> both should rebuild (not pinned)
	SetConfig(testCfg(upath.OrderAncestorsFirst, 4))

	s2Reg := Registry()
	s2Res := Resolver()

	if s1Reg == s2Reg {
		t.Fatalf("registry was not rebuilt on SetConfig (unpinned)")
	}
	if s1Res == s2Res {
		t.Fatalf("resolver was not rebuilt on SetConfig (unpinned)")
	}

	b.mu.Lock()
	gotCfg, prevReg, prevRes := b.lastCfg, b.lastPrevRegID, b.lastPrevResID
	b.mu.Unlock()
	if gotCfg.MaxAliasDepth != 4 || gotCfg.SearchOrder != upath.OrderAncestorsFirst {
		t.Fatalf("builder received wrong cfg: %+v", gotCfg)
	}
	if prevReg != "reg#1" || prevRes != "res#1" {
		t.Fatalf("builder received wrong previous layers: reg=%q res=%q", prevReg, prevRes)
	}
	if Config().MaxAliasDepth != 4 {
		t.Fatalf("Config() = %+v, want the new config", Config())
	}
}

func TestSetRegistry_PinsRegistry_and_RebuildsResolverIfUnpinned(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, testCfg(upath.OrderInterleaved, 8), nil)

	customReg := newMockRegistry("custom")
	SetRegistry(customReg)
	if !IsRegistryPinned() {
		t.Fatalf("SetRegistry did not pin the registry")
	}
	if Resolver().Registry() != customReg {
		t.Fatalf("resolver was not rebuilt over the new registry")
	}

	beforeRes := Resolver()
	SetConfig(testCfg(upath.OrderInterleaved, 3))

	afterReg := Registry()
	afterRes := Resolver()

	if afterReg != customReg {
		t.Fatalf("pinned registry was rebuilt unexpectedly")
	}
	if afterRes == beforeRes {
		t.Fatalf("resolver was not rebuilt when cfg changed and res not pinned")
	}

	// nil is ignored
	SetRegistry(nil)
	if Registry() != customReg {
		t.Fatalf("SetRegistry(nil) replaced the registry")
	}
}

func TestSetResolver_PinsResolver(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, testCfg(upath.OrderInterleaved, 8), nil)

	// Pin resolver
	customRes := newMockResolver("custom", Config(), Registry())
	SetResolver(customRes)
	if !IsResolverPinned() {
		t.Fatalf("SetResolver did not pin the resolver")
	}

	// Grab current registry pointer (should be from builder b)
	regBefore := Registry()

	// Change cfg -> expect: registry rebuilt (not pinned), resolver unchanged (pinned)
	SetConfig(testCfg(upath.OrderAncestorsFirst, 8))

	regAfter := Registry()
	resAfter := Resolver()

	if resAfter != customRes {
		t.Fatalf("pinned resolver was rebuilt unexpectedly")
	}
	if regAfter == regBefore {
		t.Fatalf("registry was not rebuilt on SetConfig when resolver is pinned")
	}
}

func TestSetBuilder_Rebuilds_Only_Unpinned(t *testing.T) {
	// Start with builder A
	a := &mockBuilder{}
	resetWithBuilder(t, a, testCfg(upath.OrderInterleaved, 8), nil)

	// Pin resolver, leave registry unpinned
	SetResolver(newMockResolver("pinned", Config(), Registry()))
	regBefore := Registry()
	resBefore := Resolver()

	// Swap to builder B: the unpinned registry is rebuilt by B
	b := &mockBuilder{}
	SetBuilder(b)

	if Builder() != b {
		t.Fatalf("Builder() did not return the new builder")
	}
	regAfter := Registry()
	resAfter := Resolver()

	if regAfter == regBefore {
		t.Fatalf("registry did not rebuild after SetBuilder (unpinned)")
	}
	if mr, ok := regAfter.(*mockRegistry); !ok || mr.id != "reg#1" {
		t.Fatalf("registry was not built by the new builder: %#v", regAfter)
	}
	if resAfter != resBefore {
		t.Fatalf("pinned resolver was rebuilt after SetBuilder")
	}
}

func TestSetExt_Rebuilds_Unpinned_and_PassesValue(t *testing.T) {
	// Ensure snapshot uses our mock builder
	b := &mockBuilder{}
	resetWithBuilder(t, b, testCfg(upath.OrderInterleaved, 8), nil)

	// Change ext -> should rebuild unpinned layers via current builder (b) and pass ext
	type extCfg struct{ X int }
	SetExt(extCfg{X: 42})

	b.mu.Lock()
	got := b.lastExt
	b.mu.Unlock()
	ec, ok := got.(extCfg)
	if !ok || ec.X != 42 {
		t.Fatalf("builder did not receive ext properly: %#v", got)
	}
	if v, ok := ExtAs[extCfg](); !ok || v.X != 42 {
		t.Fatalf("ExtAs = (%#v,%v), want ({42},true)", v, ok)
	}
	if _, ok := ExtAs[string](); ok {
		t.Fatalf("ExtAs[string] matched an extCfg")
	}

	// Pin both and ensure no rebuild on SetExt
	SetRegistry(Registry())
	SetResolver(Resolver())
	rCntBefore, sCntBefore := func() (int, int) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.regCounter, b.resCounter
	}()
	SetExt(extCfg{X: 7})
	rCntAfter, sCntAfter := func() (int, int) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.regCounter, b.resCounter
	}()
	if rCntAfter != rCntBefore || sCntAfter != sCntBefore {
		t.Fatalf("SetExt should not rebuild when both layers are pinned")
	}
}

func TestUnpin_Allows_Rebuild_After(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, testCfg(upath.OrderInterleaved, 8), nil)

	PinRegistry()
	PinResolver()

	reg1 := Registry()
	res1 := Resolver()
	SetConfig(testCfg(upath.OrderAncestorsFirst, 4))
	if Registry() != reg1 || Resolver() != res1 {
		t.Fatalf("pinned layers should not rebuild on SetConfig")
	}

	UnpinRegistry()
	UnpinResolver()
	if IsRegistryPinned() || IsResolverPinned() {
		t.Fatalf("layers still pinned after Unpin")
	}
	SetConfig(testCfg(upath.OrderInterleaved, 6))
	if Registry() == reg1 {
		t.Fatalf("registry should rebuild after UnpinRegistry+SetConfig")
	}
	if Resolver() == res1 {
		t.Fatalf("resolver should rebuild after UnpinResolver+SetConfig")
	}
}

func TestPublish_PanicsOnNilLayers(t *testing.T) {
	resetWithBuilder(t, &mockBuilder{}, testCfg(upath.OrderInterleaved, 8), nil)

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNilRegistry) {
			t.Fatalf("recover() = %v, want ErrNilRegistry", r)
		}
	}()
	SetBuilder(nilBuilder{})
}

// nilBuilder violates the Builder contract.
type nilBuilder struct{}

func (nilBuilder) BuildRegistry(apis.Config, apis.Registry, any) apis.Registry { return nil }
func (nilBuilder) BuildResolver(apis.Config, apis.Registry, apis.Resolver, any) apis.Resolver {
	return nil
}

func TestDomainHelpers(t *testing.T) {
	resetWithBuilder(t, builder.New(), config.NewConfig(config.WithLink("Class:", codeobj.KindClass)), nil)
	root := Root()

	later := P("Foo::Bar")
	if later.Resolved() {
		t.Fatalf("P(Foo::Bar) resolved before definition")
	}

	foo, err := Define(nil, "Foo", codeobj.KindModule)
	if err != nil {
		t.Fatalf("Define(Foo): %v", err)
	}
	bar, err := Define(foo, "Bar", codeobj.KindClass)
	if err != nil {
		t.Fatalf("Define(Foo::Bar): %v", err)
	}
	if !later.Equal(bar) {
		t.Fatalf("P(Foo::Bar) does not resolve after definition")
	}
	if got, ok := At("Foo::Bar"); !ok || got != bar {
		t.Fatalf("At(Foo::Bar) = (%v,%v)", got, ok)
	}

	p, err := Proxy(foo, "Bar", proxy.WithKind(codeobj.KindClass))
	if err != nil || !p.Equal(bar) {
		t.Fatalf("Proxy(Foo, Bar) = (%v,%v)", p, err)
	}

	top, err := Define(nil, "Top", codeobj.KindClass)
	if err != nil {
		t.Fatalf("Define(Top): %v", err)
	}
	if got, ok := ResolveLink("Class:", "Top"); !ok || got != top {
		t.Fatalf("ResolveLink(Class:, Top) = (%v,%v)", got, ok)
	}
	if got, ok := ResolveLink("Class:", "Foo::Bar"); ok {
		t.Fatalf("ResolveLink(Class:, Foo::Bar) = %v, want no match for a qualified title", got)
	}
	if err := RegisterLink("Module:", codeobj.KindModule); err != nil {
		t.Fatalf("RegisterLink: %v", err)
	}
	if got, ok := ResolveLink("Module:", "Foo"); !ok || got != foo {
		t.Fatalf("ResolveLink(Module:, Foo) = (%v,%v)", got, ok)
	}
	if n := len(Links()); n != 2 {
		t.Fatalf("Links() has %d keywords, want 2", n)
	}

	Clear()
	if Root() != root {
		t.Fatalf("root changed identity across Clear")
	}
	if _, ok := At("Foo"); ok {
		t.Fatalf("At(Foo) after Clear: unexpected hit")
	}
	if len(Links()) != 0 {
		t.Fatalf("Links() after Clear = %v", Links())
	}
	if P("Foo::Bar").Resolved() {
		t.Fatalf("fresh proxy resolved after Clear")
	}
	// The cached resolution of an old proxy is kept.
	if !later.Resolved() {
		t.Fatalf("resolved proxy forgot its object")
	}
}

func TestProxy_InvalidContext(t *testing.T) {
	resetWithBuilder(t, builder.New(), config.DefaultConfig(), nil)
	m, err := Define(nil, "run", codeobj.KindMethod)
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if _, err := Proxy(m, "X"); !errors.Is(err, proxy.ErrInvalidNamespace) {
		t.Fatalf("Proxy(method, X): want ErrInvalidNamespace, got %v", err)
	}
}

func TestResolution_Concurrent_With_SetConfig(t *testing.T) {
	resetWithBuilder(t, builder.New(), testCfg(upath.OrderInterleaved, 8), nil)
	a, _ := Define(nil, "A", codeobj.KindModule)
	_, _ = Define(a, "C", codeobj.KindClass)
	_, _ = Define(nil, "B", codeobj.KindConstant, codeobj.WithValue("A"))

	done := make(chan struct{})
	var wg sync.WaitGroup

	readers := runtime.GOMAXPROCS(0) * 4
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if !P("B::C").Resolved() {
					t.Errorf("B::C did not resolve")
					return
				}
				_, _ = At("A::C")
			}
		}()
	}

	go func() {
		for i := 0; i < 20; i++ {
			order := upath.OrderInterleaved
			if i%2 == 0 {
				order = upath.OrderAncestorsFirst
			}
			SetConfig(testCfg(order, 4+(i%5)))
			time.Sleep(time.Millisecond)
		}
		close(done)
	}()

	wg.Wait()
	<-done
}
