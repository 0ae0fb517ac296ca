// Command sqllint checks that every SQL constant starts with a unique
// "--sql <uuid>" marker. SQLRunner logs queries by that marker, so a missing
// or reused one makes query logs ambiguous.
//
// Usage: go run ./internal/tools/sqllint ./internal/sqlinline
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var sqlKeyword = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)

const markerPrefix = "--sql "

type violation struct {
	pos     token.Position
	name    string
	message string
}

func (v violation) String() string {
	return fmt.Sprintf("%s:%d %s (%s)", v.pos.Filename, v.pos.Line, v.message, v.name)
}

type query struct {
	pos    token.Position
	name   string
	marker string
}

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	queries, err := collect(targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
		os.Exit(1)
	}
	if vs := check(queries); len(vs) > 0 {
		fmt.Fprintln(os.Stderr, "sqllint: invalid SQL markers")
		for _, v := range vs {
			fmt.Fprintln(os.Stderr, "  "+v.String())
		}
		os.Exit(1)
	}
}

func collect(targets []string) ([]query, error) {
	fset := token.NewFileSet()
	var out []query
	for _, target := range targets {
		err := filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != target && (strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") || d.Name() == "vendor") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			qs, err := parseFile(fset, path)
			if err != nil {
				return err
			}
			out = append(out, qs...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseFile(fset *token.FileSet, path string) ([]query, error) {
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}
	var out []query
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			raw, err := strconv.Unquote(lit.Value)
			if err != nil || !sqlKeyword.MatchString(raw) {
				continue
			}
			name := "_"
			if i < len(spec.Names) {
				name = spec.Names[i].Name
			}
			out = append(out, query{pos: fset.Position(lit.Pos()), name: name, marker: firstLine(raw)})
		}
		return true
	})
	return out, nil
}

func check(queries []query) []violation {
	var vs []violation
	seen := map[string]query{}
	for _, q := range queries {
		id, ok := strings.CutPrefix(q.marker, markerPrefix)
		if !ok {
			vs = append(vs, violation{pos: q.pos, name: q.name, message: "missing --sql <uuid> marker"})
			continue
		}
		parsed, err := uuid.Parse(id)
		if err != nil || parsed.String() != id {
			vs = append(vs, violation{pos: q.pos, name: q.name, message: "marker is not a lowercase uuid"})
			continue
		}
		if prev, dup := seen[id]; dup {
			vs = append(vs, violation{pos: q.pos, name: q.name, message: "marker already used by " + prev.name})
			continue
		}
		seen[id] = q
	}
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].pos.Filename != vs[j].pos.Filename {
			return vs[i].pos.Filename < vs[j].pos.Filename
		}
		return vs[i].pos.Line < vs[j].pos.Line
	})
	return vs
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}
