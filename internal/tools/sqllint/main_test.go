package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCheckFlagsBadMarkers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "q.go", "package q\n\n"+
		"const QOk = `--sql 3f1c2a7e-5b8d-4e21-9c3a-7d6f0b1e4a92\nselect 1;`\n"+
		"const QMissing = `select 2;`\n"+
		"const QUpper = `--sql 3F1C2A7E-5B8D-4E21-9C3A-7D6F0B1E4A92\nselect 3;`\n"+
		"const QDup = `--sql 3f1c2a7e-5b8d-4e21-9c3a-7d6f0b1e4a92\nupdate t set a = 1;`\n"+
		"const NotSQL = \"hello\"\n")

	queries, err := collect([]string{dir})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(queries) != 4 {
		t.Fatalf("collected %d queries, want 4", len(queries))
	}
	vs := check(queries)
	if len(vs) != 3 {
		t.Fatalf("violations = %v, want 3", vs)
	}
	want := []string{"QMissing", "QUpper", "QDup"}
	for i, v := range vs {
		if v.name != want[i] {
			t.Fatalf("violation %d = %s, want %s", i, v.name, want[i])
		}
	}
	if !strings.Contains(vs[2].message, "QOk") {
		t.Fatalf("duplicate message = %q", vs[2].message)
	}
}

func TestDocumentQueriesAreClean(t *testing.T) {
	queries, err := collect([]string{"../../sqlinline"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(queries) == 0 {
		t.Fatalf("no queries found")
	}
	if vs := check(queries); len(vs) > 0 {
		t.Fatalf("violations: %v", vs)
	}
}
