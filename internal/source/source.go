// Package source loads a target project as type-annotated syntax trees.
//
// A [Program] is the scanner's view of the project: one [File] per compiled
// Go file, in the deterministic order reported by the build system, each
// carrying its syntax tree, comments and type information.
package source

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
)

// Program holds the loaded view of a project.
type Program struct {
	Fset     *token.FileSet
	Files    []*File
	Packages []*types.Package
}

// File is a single source file with its type information.
type File struct {
	Path   string
	Syntax *ast.File
	Info   *types.Info
	Pkg    *types.Package
}

// Load parses and type-checks every package under root.
// It fails when the build system reports no usable input or when any
// package carries a load error; the generator has nothing valid to scan
// in either case.
func Load(root string) (*Program, error) {
	// Load complete type information along with type-annotated syntax.
	conf := &packages.Config{
		Dir:  root,
		Fset: token.NewFileSet(),
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(conf, "./...")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load packages")
	}
	if err = checkForPackageErrors(pkgs); err != nil {
		return nil, err
	}

	prog := &Program{Fset: conf.Fset}
	for _, pkg := range pkgs {
		if pkg.Types != nil {
			prog.Packages = append(prog.Packages, pkg.Types)
		}
		for i, syntax := range pkg.Syntax {
			path := ""
			if i < len(pkg.CompiledGoFiles) {
				path = pkg.CompiledGoFiles[i]
			}
			prog.Files = append(prog.Files, &File{
				Path:   path,
				Syntax: syntax,
				Info:   pkg.TypesInfo,
				Pkg:    pkg.Types,
			})
		}
	}
	if len(prog.Files) == 0 {
		return nil, errors.Errorf("no Go source files found under %s", root)
	}
	return prog, nil
}

// FileAt returns the file containing pos, or nil.
func (p *Program) FileAt(pos token.Pos) *File {
	for _, f := range p.Files {
		if f.Syntax.FileStart <= pos && pos < f.Syntax.FileEnd {
			return f
		}
	}
	return nil
}

// Position resolves pos against the program's file set.
func (p *Program) Position(pos token.Pos) token.Position {
	return p.Fset.Position(pos)
}

func checkForPackageErrors(pkgs []*packages.Package) (err error) {
	packages.Visit(pkgs, func(pkg *packages.Package) bool {
		for _, err = range pkg.Errors {
			err = errors.Wrapf(err, "package %s has reported an error", pkg.PkgPath)
			return false
		}
		mod := pkg.Module
		if mod != nil && mod.Error != nil {
			err = errors.New(mod.Error.Err)
			return false
		}
		return true
	}, nil)
	return err
}
