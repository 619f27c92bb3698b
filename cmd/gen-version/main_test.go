package main

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	src := generate("main", `v1.2.0-3-gabcde "dirty"`)
	f, err := parser.ParseFile(token.NewFileSet(), "version_git.go", src, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	if f.Name.Name != "main" {
		t.Errorf("expected package main, got %s", f.Name.Name)
	}
	if !strings.Contains(src, `gitVersion = "v1.2.0-3-gabcde \"dirty\""`) {
		t.Errorf("version not quoted in generated code:\n%s", src)
	}
}
