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

// Package fixture loads declaration files describing code objects, link
// keywords and references, and applies them to a registry.
//
// Fixtures stand in for a source parser in tests and in the cref command:
//
//	links:
//	  - {keyword: "Class:", kind: class}
//	objects:
//	  - {kind: module, path: A}
//	  - {kind: constant, path: B, value: A}
//	  - {kind: module, path: "B::C"}       # defined as A::C
//	  - {kind: class, path: Widget, mixins: [A]}
//	references:
//	  - {context: Widget, ref: C, kind: module}
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"dirpx.dev/cref/apis"
	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/proxy"
	upath "dirpx.dev/cref/utils/path"
)

var (
	// ErrUnknownFormat is returned for file extensions other than .yaml, .yml and .toml.
	ErrUnknownFormat = errors.New("cref(fixture): unknown fixture format")
	// ErrInvalidPath is returned for object paths that cannot name an object.
	ErrInvalidPath = errors.New("cref(fixture): invalid object path")
	// ErrUnresolvedNamespace is returned when some objects' namespaces never resolve.
	ErrUnresolvedNamespace = errors.New("cref(fixture): unresolved namespace")
)

// Format is a fixture encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by a file name.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// Fixture is a decoded declaration file.
type Fixture struct {
	Links      []Link      `yaml:"links" toml:"links"`
	Objects    []Object    `yaml:"objects" toml:"objects"`
	References []Reference `yaml:"references" toml:"references"`
}

// Link binds a link keyword to a kind.
type Link struct {
	Keyword string `yaml:"keyword" toml:"keyword"`
	Kind    string `yaml:"kind" toml:"kind"`
}

// Object declares one code object. Path is the full path as it would be
// written in source ("B::C", "Foo#run", "Foo.create"); its prefix is
// resolved like any other reference.
type Object struct {
	Kind   string   `yaml:"kind" toml:"kind"`
	Path   string   `yaml:"path" toml:"path"`
	Value  string   `yaml:"value,omitempty" toml:"value"`
	Mixins []string `yaml:"mixins,omitempty" toml:"mixins"`
}

// Reference is a reference to resolve, written inside Context.
type Reference struct {
	Context string `yaml:"context,omitempty" toml:"context"`
	Ref     string `yaml:"ref" toml:"ref"`
	Kind    string `yaml:"kind,omitempty" toml:"kind"`
}

// Load reads and decodes the fixture at path.
func Load(path string) (*Fixture, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cref(fixture): %w", err)
	}
	f, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("cref(fixture): %s: %w", path, err)
	}
	return f, nil
}

// Decode decodes a fixture from r.
func Decode(r io.Reader, format Format) (*Fixture, error) {
	var f Fixture
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys: %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &f, nil
}

// Apply registers the fixture's links and objects through res. Objects
// may be listed in any order: one whose namespace does not resolve yet is
// retried after the others, and Apply fails only when a whole pass makes
// no progress.
func (f *Fixture) Apply(res apis.Resolver) error {
	reg := res.Registry()
	for i, l := range f.Links {
		kind, err := codeobj.ParseKind(l.Kind)
		if err != nil {
			return fmt.Errorf("cref(fixture): links[%d]: %w", i, err)
		}
		if err := reg.RegisterLink(l.Keyword, kind); err != nil {
			return fmt.Errorf("cref(fixture): links[%d]: %w", i, err)
		}
	}

	pending := f.Objects
	for len(pending) > 0 {
		var retry []Object
		for _, decl := range pending {
			done, err := define(res, decl)
			if err != nil {
				return err
			}
			if !done {
				retry = append(retry, decl)
			}
		}
		if len(retry) == len(pending) {
			paths := make([]string, len(retry))
			for i, d := range retry {
				paths[i] = d.Path
			}
			return fmt.Errorf("%w: %s", ErrUnresolvedNamespace, strings.Join(paths, ", "))
		}
		pending = retry
	}
	return nil
}

// define declares one object. It reports false when the object's
// namespace cannot be resolved yet.
func define(res apis.Resolver, decl Object) (bool, error) {
	reg := res.Registry()
	kind, err := codeobj.ParseKind(decl.Kind)
	if err != nil {
		return false, fmt.Errorf("cref(fixture): %s: %w", decl.Path, err)
	}
	ref := upath.Parse(decl.Path)
	if !ref.Valid() || (ref.IsMethod() && kind != codeobj.KindMethod) || (kind == codeobj.KindMethod && ref.Sep == codeobj.NSEP) {
		return false, fmt.Errorf("%w: %q as %s", ErrInvalidPath, decl.Path, kind)
	}

	ns, ok, err := namespaceOf(res, ref.Segments)
	if err != nil || !ok {
		return false, err
	}

	var opts []codeobj.Option
	if ref.Sep == codeobj.CSEP {
		opts = append(opts, codeobj.WithScope(codeobj.ScopeClass))
	}
	if decl.Value != "" {
		opts = append(opts, codeobj.WithValue(decl.Value))
	}
	obj, err := reg.Define(ns, ref.Leaf, kind, opts...)
	if err != nil {
		return false, fmt.Errorf("cref(fixture): %s: %w", decl.Path, err)
	}

	// Mixins are written inside the object itself, as in
	// "class Widget; include Helpers; end".
	for _, m := range decl.Mixins {
		mp, err := proxy.New(res, obj, m)
		if err != nil {
			return false, fmt.Errorf("cref(fixture): %s: mixin %q: %w", decl.Path, m, err)
		}
		obj.Include(mp)
	}
	return true, nil
}

// namespaceOf walks segments from the root, one "::" level at a time, so
// a method Foo.Bar never stands in for a namespace Foo::Bar. Constant
// aliases are followed. It reports false while a level (or an alias
// target) is not declared yet.
func namespaceOf(res apis.Resolver, segments []string) (*codeobj.Object, bool, error) {
	reg := res.Registry()
	ns := reg.Root()
	for _, seg := range segments {
		obj, ok := reg.At(codeobj.Join(ns.Path(), codeobj.NSEP, seg))
		if !ok {
			return nil, false, nil
		}
		next, ok := res.Target(obj, 0)
		if !ok {
			if obj.IsAlias() {
				return nil, false, nil
			}
			return nil, false, fmt.Errorf("%w: %s is a %s", ErrInvalidPath, obj.Path(), obj.Kind())
		}
		ns = next
	}
	return ns, true, nil
}

// Proxies builds one proxy per declared reference. Contexts are proxies
// themselves, so references may name namespaces defined later.
func (f *Fixture) Proxies(res apis.Resolver) ([]*proxy.Proxy, error) {
	out := make([]*proxy.Proxy, 0, len(f.References))
	for i, r := range f.References {
		var ctx codeobj.Ref
		if r.Context != "" {
			cp, err := proxy.New(res, nil, r.Context)
			if err != nil {
				return nil, err
			}
			ctx = cp
		}
		var opts []proxy.Option
		if r.Kind != "" {
			kind, err := codeobj.ParseKind(r.Kind)
			if err != nil {
				return nil, fmt.Errorf("cref(fixture): references[%d]: %w", i, err)
			}
			opts = append(opts, proxy.WithKind(kind))
		}
		p, err := proxy.New(res, ctx, r.Ref, opts...)
		if err != nil {
			return nil, fmt.Errorf("cref(fixture): references[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
