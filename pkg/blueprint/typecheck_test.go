package blueprint

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nieomylnieja/apibgen/internal/source"
)

// loadFixture type-checks a single-file fixture so scanner and resolver
// tests run without the build system.
func loadFixture(t *testing.T, src string) (*source.Program, *source.File) {
	t.Helper()
	fset := token.NewFileSet()
	syntax, err := parser.ParseFile(fset, "fixture.go", src, parser.ParseComments)
	require.NoError(t, err)

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{}
	pkg, err := conf.Check("fixture", fset, []*ast.File{syntax}, info)
	require.NoError(t, err)

	file := &source.File{Path: "fixture.go", Syntax: syntax, Info: info, Pkg: pkg}
	prog := &source.Program{
		Fset:     fset,
		Files:    []*source.File{file},
		Packages: []*types.Package{pkg},
	}
	return prog, file
}
