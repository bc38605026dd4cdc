// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cdflags

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joaquintides/cdmap/dialect"
	"github.com/joaquintides/cdmap/execute"
	"github.com/joaquintides/cdmap/probe"
	"github.com/joaquintides/cdmap/registry"
	"github.com/joaquintides/cdmap/toolsupport/gccutil"
)

type fakeExec struct {
	err  error
	args [][]string
}

func (f *fakeExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	f.args = append(f.args, cmd.Args)
	return f.err
}

func setupFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for k, v := range files {
		fname := filepath.Join(dir, filepath.FromSlash(k))
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, []byte(v), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func parse(t *testing.T, args ...string) *Options {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	o := &Options{}
	o.RegisterFlags(fs, map[string]string{"BOOST_ROOT": "/nonexistent"})
	err := fs.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%q)=%v; want nil err", args, err)
	}
	return o
}

func TestSetup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{
		"libs/core/include/boost/core.hpp": "",
		"libs/json/include/boost/json.hpp": "",
		"mincxx.json":                      `{"json": "11"}`,
		"cdmap.star": `
def init(ctx):
    return struct(
        compiler = "g++-12",
        mode = "trace",
        dialects = ["03", "11", "17"],
        defines = ["BOOST_ALL_NO_LIB"],
        batch_size = 20,
        min_dialects = {"core": 11, "json": 17},
    )
`,
	})

	t.Run("flags", func(t *testing.T) {
		o := parse(t, "-boost_root", dir, "-std", "11,17", "-std", "20", "-D", "A=1", "-D", "B", "-compiler", "ccache clang++", "-manifest", filepath.Join(dir, "mincxx.json"))
		exec := &fakeExec{}
		o.Executor = exec
		s, err := o.Setup(ctx)
		if err != nil {
			t.Fatalf("Setup=%v; want nil err", err)
		}
		if diff := cmp.Diff([]string{"core", "json"}, s.Registry.Names()); diff != "" {
			t.Errorf("modules diff -want +got:\n%s", diff)
		}
		if diff := cmp.Diff([]dialect.Dialect{dialect.CXX11, dialect.CXX17, dialect.CXX20}, s.Dialects); diff != "" {
			t.Errorf("dialects diff -want +got:\n%s", diff)
		}
		if diff := cmp.Diff(registry.MinDialects{"json": dialect.CXX11}, s.MinDialects); diff != "" {
			t.Errorf("min dialects diff -want +got:\n%s", diff)
		}
		if diff := cmp.Diff([]string{"ccache", "clang++"}, s.Compiler.Args); diff != "" {
			t.Errorf("compiler diff -want +got:\n%s", diff)
		}
		if diff := cmp.Diff([]string{"A=1", "B"}, s.Compiler.Defines); diff != "" {
			t.Errorf("defines diff -want +got:\n%s", diff)
		}
		if s.Compiler.Mode != gccutil.MakeRule {
			t.Errorf("mode=%v; want %v", s.Compiler.Mode, gccutil.MakeRule)
		}
		if diff := cmp.Diff([][]string{{"ccache", "clang++", "-v"}}, exec.args); diff != "" {
			t.Errorf("compiler check diff -want +got:\n%s", diff)
		}
		if s.Scanner.BatchSize != 100 {
			t.Errorf("batch size=%d; want 100", s.Scanner.BatchSize)
		}
	})

	t.Run("config", func(t *testing.T) {
		o := parse(t, "-boost_root", dir, "-all", "-config", filepath.Join(dir, "cdmap.star"), "-manifest", filepath.Join(dir, "mincxx.json"), "-D", "C")
		o.Executor = &fakeExec{}
		s, err := o.Setup(ctx)
		if err != nil {
			t.Fatalf("Setup=%v; want nil err", err)
		}
		if diff := cmp.Diff([]dialect.Dialect{dialect.CXX03, dialect.CXX11, dialect.CXX17}, s.Dialects); diff != "" {
			t.Errorf("dialects diff -want +got:\n%s", diff)
		}
		// manifest overrides config.
		if diff := cmp.Diff(registry.MinDialects{"core": dialect.CXX11, "json": dialect.CXX11}, s.MinDialects); diff != "" {
			t.Errorf("min dialects diff -want +got:\n%s", diff)
		}
		if diff := cmp.Diff([]string{"g++-12"}, s.Compiler.Args); diff != "" {
			t.Errorf("compiler diff -want +got:\n%s", diff)
		}
		if diff := cmp.Diff([]string{"BOOST_ALL_NO_LIB", "C"}, s.Compiler.Defines); diff != "" {
			t.Errorf("defines diff -want +got:\n%s", diff)
		}
		if s.Compiler.Mode != gccutil.IncludeTrace {
			t.Errorf("mode=%v; want %v", s.Compiler.Mode, gccutil.IncludeTrace)
		}
		if s.Scanner.BatchSize != 20 {
			t.Errorf("batch size=%d; want 20", s.Scanner.BatchSize)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		o := parse(t, "-boost_root", dir, "-config", filepath.Join(dir, "cdmap.star"), "-compiler", "clang++-10", "-mode", "make", "-batch_size", "7", "-std", "17")
		o.Executor = &fakeExec{}
		s, err := o.Setup(ctx)
		if err != nil {
			t.Fatalf("Setup=%v; want nil err", err)
		}
		if diff := cmp.Diff([]string{"clang++-10"}, s.Compiler.Args); diff != "" {
			t.Errorf("compiler diff -want +got:\n%s", diff)
		}
		if s.Compiler.Mode != gccutil.MakeRule || s.Scanner.BatchSize != 7 {
			t.Errorf("mode=%v batch size=%d; want %v 7", s.Compiler.Mode, s.Scanner.BatchSize, gccutil.MakeRule)
		}
		if diff := cmp.Diff([]dialect.Dialect{dialect.CXX17}, s.Dialects); diff != "" {
			t.Errorf("dialects diff -want +got:\n%s", diff)
		}
	})
}

func TestSetup_errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{
		"libs/core/include/boost/core.hpp": "",
	})
	for _, tc := range []struct {
		name    string
		args    []string
		execErr error
		wantErr error
	}{
		{
			name:    "no root",
			args:    nil,
			wantErr: registry.ErrRootNotFound,
		},
		{
			name:    "compiler not found",
			args:    []string{"-boost_root", dir},
			execErr: errors.New("exec: not found"),
			wantErr: probe.ErrCompilerNotFound,
		},
		{
			name:    "empty compiler",
			args:    []string{"-boost_root", dir, "-compiler", " "},
			wantErr: flag.ErrHelp,
		},
		{
			name:    "bad batch size",
			args:    []string{"-boost_root", dir, "-batch_size", "0"},
			wantErr: flag.ErrHelp,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			o := parse(t, tc.args...)
			o.Executor = &fakeExec{err: tc.execErr}
			_, err := o.Setup(ctx)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Setup=%v; want %v", err, tc.wantErr)
			}
		})
	}

	o := parse(t, "-boost_root", dir, "-std", "23")
	o.Executor = &fakeExec{}
	_, err := o.Setup(ctx)
	if err == nil {
		t.Errorf("Setup(-std 23)=nil; want error")
	}
}

func TestFlags(t *testing.T) {
	o := parse(t, "-compiler", "g++", "-D", "A", "-D", "B")
	want := map[string]string{
		"compiler": "g++",
		"D":        "A,B",
	}
	if diff := cmp.Diff(want, o.Flags()); diff != "" {
		t.Errorf("Flags() diff -want +got:\n%s", diff)
	}
}
