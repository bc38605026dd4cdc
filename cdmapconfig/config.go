// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cdmapconfig loads the optional Starlark config of `cdmap`.
//
// A config file defines `init(ctx)` returning a struct:
//
//	def init(ctx):
//	    return struct(
//	        compiler = "clang++-10",
//	        mode = "make",
//	        dialects = [
//	            struct(label = "17", flags = ["-std=gnu++17"]),
//	            "20",
//	        ],
//	        defines = ["BOOST_ALL_NO_LIB"],
//	        batch_size = 100,
//	        excluded_dirs = ["detail", "impl"],
//	        min_dialects = {"json": "11"},
//	    )
//
// Every field is optional. ctx.flags holds the command line flags.
package cdmapconfig

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/joaquintides/cdmap/dialect"
	"github.com/joaquintides/cdmap/o11y/clog"
	"github.com/joaquintides/cdmap/registry"
	"github.com/joaquintides/cdmap/toolsupport/shutil"
)

const configEntryPoint = "init"

// Config is the result of the config's init.
// Zero values mean the field wasn't set.
type Config struct {
	Compiler     []string
	Mode         string
	Dialects     []dialect.Dialect
	Defines      []string
	BatchSize    int
	ExcludedDirs []string
	MinDialects  registry.MinDialects
}

// InitError is an error in the config's init.
type InitError struct {
	fn  starlark.Value
	err *starlark.EvalError
}

func (e InitError) Error() string {
	if fn, ok := e.fn.(*starlark.Function); ok {
		return fmt.Sprintf("failed to run %s[%s]: %v", configEntryPoint, fn.Position(), e.err)
	}
	return fmt.Sprintf("failed to run %s: %v", configEntryPoint, e.err)
}

// Backtrace returns the Starlark call stack.
func (e InitError) Backtrace() string {
	return e.err.Backtrace()
}

func (e InitError) Unwrap() error {
	return e.err
}

func predeclared() starlark.StringDict {
	runtimeModule := &starlarkstruct.Module{
		Name: "runtime",
		Members: starlark.StringDict{
			"num_cpu": starlark.MakeInt(runtime.NumCPU()),
			"os":      starlark.String(runtime.GOOS),
			"arch":    starlark.String(runtime.GOARCH),
		},
	}
	runtimeModule.Freeze()
	return starlark.StringDict{
		"struct":  starlark.NewBuiltin("struct", starlarkstruct.Make),
		"runtime": runtimeModule,
	}
}

// Load loads the config file fname and runs its init with flags.
func Load(ctx context.Context, fname string, flags map[string]string) (*Config, error) {
	return Parse(ctx, fname, nil, flags)
}

// Parse is like Load, but reads the config from src if it's not nil.
// See starlark.ExecFile for the accepted types of src.
func Parse(ctx context.Context, fname string, src any, flags map[string]string) (*Config, error) {
	thread := &starlark.Thread{
		Name: "load",
		Print: func(thread *starlark.Thread, msg string) {
			clog.Infof(ctx, "thread:%s %s", thread.Name, msg)
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, errors.New("load is not allowed in config")
		},
	}
	globals, err := starlark.ExecFile(thread, fname, src, predeclared())
	if err != nil {
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			clog.Warningf(ctx, "stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, fmt.Errorf("failed to exec %s: %w", fname, err)
	}
	fun, ok := globals[configEntryPoint]
	if !ok {
		return nil, fmt.Errorf("%s is not defined in %s", configEntryPoint, fname)
	}
	if _, ok := fun.(starlark.Callable); !ok {
		return nil, fmt.Errorf("%s %s is not callable in %s", configEntryPoint, fun.Type(), fname)
	}

	thread.Name = configEntryPoint
	hctx := starlarkstruct.FromStringDict(starlark.String("ctx"), starlark.StringDict{
		"flags": starFlags(flags),
	})
	ret, err := starlark.Call(thread, fun, starlark.Tuple{hctx}, nil)
	if err != nil {
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			clog.Warningf(ctx, "stacktrace:\n%s", eerr.Backtrace())
			return nil, InitError{fn: fun, err: eerr}
		}
		return nil, fmt.Errorf("failed to run %s: %w", configEntryPoint, err)
	}
	s, ok := ret.(*starlarkstruct.Struct)
	if !ok {
		return nil, fmt.Errorf("%s returned %s, want struct", configEntryPoint, ret.Type())
	}
	cfg, err := unpackConfig(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	clog.Debugf(ctx, "config %s: %+v", fname, cfg)
	return cfg, nil
}

func starFlags(flags map[string]string) starlark.Value {
	dict := starlark.NewDict(len(flags))
	for k, v := range flags {
		dict.SetKey(starlark.String(k), starlark.String(v))
	}
	dict.Freeze()
	return dict
}

// attr returns the field name of s, or nil if it's unset or None.
func attr(s *starlarkstruct.Struct, name string) starlark.Value {
	if !slices.Contains(s.AttrNames(), name) {
		return nil
	}
	v, err := s.Attr(name)
	if err != nil || v == starlark.None {
		return nil
	}
	return v
}

func unpackConfig(s *starlarkstruct.Struct) (*Config, error) {
	cfg := &Config{}
	var err error
	if v := attr(s, "compiler"); v != nil {
		if str, ok := starlark.AsString(v); ok {
			cfg.Compiler, err = shutil.Split(str)
		} else {
			cfg.Compiler, err = unpackList(v)
		}
		if err != nil {
			return nil, fmt.Errorf("bad compiler: %w", err)
		}
	}
	if v := attr(s, "mode"); v != nil {
		str, ok := starlark.AsString(v)
		if !ok {
			return nil, fmt.Errorf("mode %s, want string", v.Type())
		}
		cfg.Mode = str
	}
	if v := attr(s, "dialects"); v != nil {
		cfg.Dialects, err = unpackDialects(v)
		if err != nil {
			return nil, fmt.Errorf("bad dialects: %w", err)
		}
	}
	if v := attr(s, "defines"); v != nil {
		cfg.Defines, err = unpackList(v)
		if err != nil {
			return nil, fmt.Errorf("bad defines: %w", err)
		}
	}
	if v := attr(s, "batch_size"); v != nil {
		err = starlark.AsInt(v, &cfg.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("bad batch_size: %w", err)
		}
		if cfg.BatchSize <= 0 {
			return nil, fmt.Errorf("bad batch_size %d, want positive", cfg.BatchSize)
		}
	}
	if v := attr(s, "excluded_dirs"); v != nil {
		cfg.ExcludedDirs, err = unpackList(v)
		if err != nil {
			return nil, fmt.Errorf("bad excluded_dirs: %w", err)
		}
		if cfg.ExcludedDirs == nil {
			cfg.ExcludedDirs = []string{}
		}
	}
	if v := attr(s, "min_dialects"); v != nil {
		cfg.MinDialects, err = unpackMinDialects(v)
		if err != nil {
			return nil, fmt.Errorf("bad min_dialects: %w", err)
		}
	}
	return cfg, nil
}

// unpackDialects accepts labels and struct(label, flags, defines).
// Labels must name built-in dialects; flags replace the built-in flags
// and defines are added to the built-in ones.
func unpackDialects(v starlark.Value) ([]dialect.Dialect, error) {
	iter := starlark.Iterate(v)
	if iter == nil {
		return nil, fmt.Errorf("got %s; want list", v.Type())
	}
	defer iter.Done()
	var ds []dialect.Dialect
	var elem starlark.Value
	for iter.Next(&elem) {
		if label, ok := starlark.AsString(elem); ok {
			d, err := dialect.Parse(label)
			if err != nil {
				return nil, err
			}
			ds = append(ds, d)
			continue
		}
		s, ok := elem.(*starlarkstruct.Struct)
		if !ok {
			return nil, fmt.Errorf("got %s in dialects; want string or struct", elem.Type())
		}
		lv := attr(s, "label")
		if lv == nil {
			return nil, fmt.Errorf("no label in %s", s)
		}
		label, ok := starlark.AsString(lv)
		if !ok {
			return nil, fmt.Errorf("label %s, want string", lv.Type())
		}
		d, err := dialect.Parse(label)
		if err != nil {
			return nil, err
		}
		if fv := attr(s, "flags"); fv != nil {
			d.Flags, err = unpackList(fv)
			if err != nil {
				return nil, fmt.Errorf("dialect %s flags: %w", label, err)
			}
		}
		if dv := attr(s, "defines"); dv != nil {
			defines, err := unpackList(dv)
			if err != nil {
				return nil, fmt.Errorf("dialect %s defines: %w", label, err)
			}
			d.Defines = slices.Concat(d.Defines, defines)
		}
		ds = append(ds, d)
	}
	for i := range ds {
		for j := range i {
			if ds[i].Label == ds[j].Label {
				return nil, fmt.Errorf("duplicate dialect %q", ds[i].Label)
			}
		}
	}
	dialect.Sort(ds)
	return ds, nil
}

func unpackMinDialects(v starlark.Value) (registry.MinDialects, error) {
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("got %s; want dict", v.Type())
	}
	m := make(registry.MinDialects, dict.Len())
	for _, item := range dict.Items() {
		module, ok := starlark.AsString(item[0])
		if !ok {
			return nil, fmt.Errorf("key %s, want string", item[0].Type())
		}
		var d dialect.Dialect
		var err error
		switch val := item[1].(type) {
		case starlark.Int:
			n, ok := val.Int64()
			if !ok {
				return nil, fmt.Errorf("%s: bad dialect %s", module, val)
			}
			d, err = dialect.ParseNumber(int(n))
		default:
			label, ok := starlark.AsString(val)
			if !ok {
				return nil, fmt.Errorf("%s: got %s, want string or int", module, val.Type())
			}
			d, err = dialect.Parse(label)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", module, err)
		}
		m[module] = d
	}
	return m, nil
}

func unpackList(v starlark.Value) ([]string, error) {
	iterator := starlark.Iterate(v)
	if iterator == nil {
		return nil, fmt.Errorf("got %v; want iterator", v.Type())
	}
	defer iterator.Done()
	var elem starlark.Value
	var list []string
	for iterator.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("got %v in %v; want string", elem.Type(), v.Type())
		}
		list = append(list, s)
	}
	return list, nil
}
