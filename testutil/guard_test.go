package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

type recorder struct{ msg string }

func (r *recorder) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		pred func(string) bool
		in   string
		want bool
	}{
		{"domain", DomainImportForbidden, "bizstate/pkg/domain", true},
		{"domain versioned", DomainImportForbidden, "example.com/pkg/domain@v1.2.3", true},
		{"domain sub", DomainImportForbidden, "example.com/pkg/domain/sub", false},
		{"domain lookalike", DomainImportForbidden, "example.com/pkg/domainutil", false},
		{"internal", InternalImportForbidden, "bizstate/internal/core", true},
		{"internal bare", InternalImportForbidden, "example.com/internal", false},
		{"internal word", InternalImportForbidden, "notinternal", false},
		{"infra", InfraImportForbidden, "bizstate/internal/infra/durable/s3", true},
		{"infra sibling", InfraImportForbidden, "bizstate/internal/durable", false},
		{"under self", Under("bizstate/internal/durable"), "bizstate/internal/durable", true},
		{"under child", Under("bizstate/internal/durable"), "bizstate/internal/durable/core", true},
		{"under lookalike", Under("bizstate/internal/durable"), "bizstate/internal/durablex", false},
		{"not", Not(Under("bizstate/cmd")), "bizstate/cmd/bizstate", false},
		{"empty", InternalImportForbidden, "", false},
	}
	for _, c := range cases {
		if got := c.pred(c.in); got != c.want {
			t.Errorf("%s(%q) = %v, want %v", c.name, c.in, got, c.want)
		}
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package tmp\nimport (\n\t\"fmt\"\n\talias \"bizstate/internal/core\"\n)\nvar _ = fmt.Sprint\nvar _ = alias.Options{}\n")
	writeFile(t, dir, "a_test.go", "package tmp\nimport \"bizstate/internal/cli\"\n")
	writeFile(t, dir, "notes.txt", "import \"bizstate/internal/x\"")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "b.go", "package sub\nimport \"bizstate/internal/durable\"\n")

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "bizstate/internal/core (in a.go)" {
		t.Fatalf("unexpected violations: %v", viols)
	}

	if _, err := directImportViolations(filepath.Join(dir, "missing"), InternalImportForbidden); err == nil {
		t.Fatal("expected error for missing dir")
	}
	writeFile(t, dir, "broken.go", "package tmp\nimport (")
	if _, err := directImportViolations(dir, InternalImportForbidden); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAssertNoDirectImportsPasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.go", "package tmp\nimport \"fmt\"\nfunc X() { fmt.Println(1) }\n")
	AssertNoDirectImports(t, dir, InternalImportForbidden, "stdlib only")
}

func TestImportRuleViolations(t *testing.T) {
	pkgs := []*packages.Package{
		{PkgPath: "bizstate/internal/core", Imports: map[string]*packages.Package{
			"bizstate/internal/durable":              {},
			"bizstate/internal/infra/durable/memory": {},
		}},
		{PkgPath: "bizstate/internal/durable", Imports: map[string]*packages.Package{
			"bizstate/internal/infra/durable/memory": {},
		}},
	}
	rules := []ImportRule{{
		Reason: "drivers are opened through internal/durable",
		From:   Not(Under("bizstate/internal/durable")),
		To:     InfraImportForbidden,
	}}
	viols := importRuleViolations(pkgs, rules)
	if len(viols) != 1 || !strings.HasPrefix(viols[0], "bizstate/internal/core imports bizstate/internal/infra/durable/memory") {
		t.Fatalf("unexpected violations: %v", viols)
	}
}

func TestFailIfViolations(t *testing.T) {
	var r recorder
	failIfViolations(&r, "forbidden direct imports", "why", nil)
	if r.msg != "" {
		t.Fatalf("unexpected failure: %s", r.msg)
	}
	failIfViolations(&r, "forbidden direct imports", "why", []string{"a", "b"})
	if r.msg != "forbidden direct imports (why):\na\nb" {
		t.Fatalf("unexpected message %q", r.msg)
	}
}

func TestTransitiveDependencyViolations(t *testing.T) {
	orig := goListDeps
	t.Cleanup(func() { goListDeps = orig })
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nbizstate/internal/core\n\nbizstate/pkg/domain\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", InternalImportForbidden)
	if err != nil {
		t.Fatal(err)
	}
	if len(viols) != 1 || viols[0] != "bizstate/internal/core" {
		t.Fatalf("unexpected violations: %v", viols)
	}
}
