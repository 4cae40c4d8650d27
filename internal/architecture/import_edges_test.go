package architecture_test

import (
	"maps"
	"slices"
	"testing"
)

type edgeRule struct {
	scopePath string
	banned    []string
}

func TestImportEdges(t *testing.T) {
	t.Parallel()

	stages := []string{
		"pkg/protoparser",
		"pkg/xamlparser",
		"pkg/assembler",
	}
	catalogs := []string{
		"pkg/catalog/dyncatalog",
		"pkg/catalog/reflectcatalog",
	}

	rules := []edgeRule{
		{
			scopePath: "pkg/markuptext",
			banned:    []string{"pkg", "internal", "errors"},
		},
		{
			scopePath: "pkg/catalog",
			banned:    append([]string{"pkg/instruction", "pkg/markuptext"}, append(stages, catalogs...)...),
		},
		{
			scopePath: "pkg/instruction",
			banned:    append([]string{"pkg/markuptext"}, append(stages, catalogs...)...),
		},
		{
			scopePath: "pkg/protoparser",
			banned:    append([]string{"pkg/xamlparser", "pkg/assembler"}, catalogs...),
		},
		{
			scopePath: "pkg/xamlparser",
			banned:    append([]string{"pkg/assembler", "pkg/markuptext"}, catalogs...),
		},
		{
			scopePath: "pkg/assembler",
			banned:    append([]string{"pkg/protoparser", "pkg/xamlparser", "pkg/markuptext"}, catalogs...),
		},
		{
			scopePath: "internal/nsscope",
			banned:    []string{"pkg"},
		},
		{
			scopePath: "internal/markupext",
			banned:    []string{"pkg"},
		},
		{
			scopePath: "internal/whitespace",
			banned:    []string{"pkg", "internal/nsscope", "internal/markupext"},
		},
		{
			scopePath: "internal/xiter",
			banned:    []string{"pkg"},
		},
		{
			scopePath: "errors",
			banned:    []string{"pkg", "internal"},
		},
	}

	graph := collectPackageImports(t)
	for _, rule := range rules {
		pkg := modulePkg(rule.scopePath)
		imports, ok := graph[pkg]
		if !ok {
			t.Errorf("package %s not found", rule.scopePath)
			continue
		}
		for _, imp := range slices.Sorted(maps.Keys(imports)) {
			for _, banned := range rule.banned {
				if hasPkgPrefix(imp, modulePkg(banned)) {
					t.Errorf("%s imports %s (banned for %s)", pkg, imp, rule.scopePath)
				}
			}
		}
	}
}

func TestLibraryPackagesDoNotImportFacade(t *testing.T) {
	t.Parallel()

	graph := collectPackageImports(t)
	for _, pkg := range sortedPackages(graph) {
		if hasPkgPrefix(pkg, modulePkg("cmd")) {
			continue
		}
		for imp := range graph[pkg] {
			if imp == modulePath || hasPkgPrefix(imp, modulePkg("cmd")) {
				t.Errorf("%s imports %s", pkg, imp)
			}
		}
	}
}

func TestCommandUsesPublicSurface(t *testing.T) {
	t.Parallel()

	graph := collectPackageImports(t)
	for _, pkg := range sortedPackages(graph) {
		if !hasPkgPrefix(pkg, modulePkg("cmd")) {
			continue
		}
		for imp := range graph[pkg] {
			if hasPkgPrefix(imp, modulePkg("internal")) {
				t.Errorf("%s imports internal package %s", pkg, imp)
			}
		}
	}
}

func sortedPackages(graph map[string]map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(graph))
}
