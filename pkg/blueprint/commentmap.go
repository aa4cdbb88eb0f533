package blueprint

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/nieomylnieja/apibgen/internal/source"
)

func (s *Scanner) commentMap(f *source.File) ast.CommentMap {
	cmap, ok := s.cmaps[f]
	if !ok {
		cmap = ast.NewCommentMap(s.prog.Fset, f.Syntax, f.Syntax.Comments)
		s.cmaps[f] = cmap
	}
	return cmap
}

// leadingComment returns the comment text immediately preceding the call:
// all leading comment groups attached to the call's enclosing statement,
// concatenated, along with the 1-based source line of the first group.
func (s *Scanner) leadingComment(f *source.File, call *ast.CallExpr) (string, int) {
	cmap := s.commentMap(f)
	path, _ := astutil.PathEnclosingInterval(f.Syntax, call.Pos(), call.End())
	for _, n := range path {
		if _, ok := n.(ast.Stmt); !ok {
			continue
		}
		return s.concatLeading(cmap[n], call.Pos())
	}
	return "", 0
}

// declarationComment returns the comment attached to the binding's
// declaration site, whether it is a var declaration or a short assignment.
func (s *Scanner) declarationComment(obj types.Object) (string, int) {
	f := s.prog.FileAt(obj.Pos())
	if f == nil {
		return "", 0
	}
	cmap := s.commentMap(f)
	path, _ := astutil.PathEnclosingInterval(f.Syntax, obj.Pos(), obj.Pos())
	for _, n := range path {
		switch n.(type) {
		case *ast.ValueSpec, *ast.GenDecl, *ast.DeclStmt, *ast.AssignStmt:
			if text, base := s.concatLeading(cmap[n], n.Pos()); strings.TrimSpace(text) != "" {
				return text, base
			}
		}
	}
	return "", 0
}

// concatLeading joins the comment groups ending before pos, preserving the
// blank lines between adjacent groups so tag line numbers stay exact.
func (s *Scanner) concatLeading(groups []*ast.CommentGroup, pos token.Pos) (string, int) {
	var sb strings.Builder
	base, prevEnd := 0, 0
	for _, g := range groups {
		if g.End() >= pos {
			continue
		}
		start := s.prog.Position(g.Pos()).Line
		if base == 0 {
			base = start
		} else {
			for line := prevEnd + 1; line < start; line++ {
				sb.WriteByte('\n')
			}
		}
		for _, cm := range g.List {
			sb.WriteString(cm.Text)
			sb.WriteByte('\n')
		}
		prevEnd = s.prog.Position(g.End()).Line
	}
	return sb.String(), base
}
