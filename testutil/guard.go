// Package testutil provides test helpers that keep package layering honest: which
// packages may import which, checked on source files or on the loaded module graph.
package testutil

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// AssertNoTransitiveDependency shells out to `go list -deps` with pattern and fails the
// test if any dependency path satisfies forbidden.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	requireGo(t)
	viols, out, err := transitiveDependencyViolations(pattern, forbidden)
	if err != nil {
		t.Fatalf("go list failed: %v\n%s", err, string(out))
	}
	failIfViolations(t, "forbidden transitive dependency", reason, viols)
}

// AssertNoDirectImports parses the non-test .go files in dir and fails if any import
// path satisfies forbidden. Build tags are ignored.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	failIfViolations(t, "forbidden direct imports", reason, viols)
}

// ImportRule forbids packages matched by From from importing packages matched by To.
type ImportRule struct {
	Reason string
	From   func(pkgPath string) bool
	To     func(importPath string) bool
}

// AssertImportRules loads pattern relative to dir with go/packages and fails on every
// package import that breaks one of rules. Test files are not loaded.
func AssertImportRules(t testing.TB, dir, pattern string, rules ...ImportRule) {
	t.Helper()
	requireGo(t)
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Dir: dir}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		t.Fatalf("load %s: %v", pattern, err)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		t.Fatalf("load %s: %d package error(s)", pattern, n)
	}
	failIfViolations(t, "import rule broken", "see rule reasons", importRuleViolations(pkgs, rules))
}

// Under matches prefix itself and every package below it.
func Under(prefix string) func(string) bool {
	return func(p string) bool { return p == prefix || strings.HasPrefix(p, prefix+"/") }
}

// Not inverts a predicate.
func Not(pred func(string) bool) func(string) bool {
	return func(p string) bool { return !pred(p) }
}

// DomainImportForbidden matches any import path that points to a pkg/domain package.
func DomainImportForbidden(path string) bool {
	return strings.HasSuffix(path, "/pkg/domain") || strings.Contains(path, "/pkg/domain@")
}

// InternalImportForbidden matches any import path containing an internal segment.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/")
}

// InfraImportForbidden matches the concrete durable substrate drivers.
func InfraImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/infra/")
}

func requireGo(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skipf("go toolchain not on PATH: %v", err)
	}
}

var goListDeps = func(pattern string) ([]byte, error) {
	cmd := exec.Command("go", "list", "-deps", pattern)
	return cmd.CombinedOutput()
}

func transitiveDependencyViolations(pattern string, forbidden func(path string) bool) ([]string, []byte, error) {
	out, err := goListDeps(pattern)
	if err != nil {
		return nil, out, err
	}
	var viols []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && forbidden(line) {
			viols = append(viols, line)
		}
	}
	return viols, out, nil
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range f.Imports {
			ip := strings.Trim(imp.Path.Value, `"`)
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

func importRuleViolations(pkgs []*packages.Package, rules []ImportRule) []string {
	var viols []string
	for _, p := range pkgs {
		for _, r := range rules {
			if !r.From(p.PkgPath) {
				continue
			}
			for imp := range p.Imports {
				if r.To(imp) {
					viols = append(viols, fmt.Sprintf("%s imports %s: %s", p.PkgPath, imp, r.Reason))
				}
			}
		}
	}
	sort.Strings(viols)
	return viols
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfViolations(t fatalLogger, what, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("%s (%s):\n%s", what, reason, strings.Join(viols, "\n"))
	}
}
