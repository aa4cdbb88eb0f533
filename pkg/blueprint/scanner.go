package blueprint

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ast/astutil"

	"github.com/nieomylnieja/apibgen/internal/config"
	"github.com/nieomylnieja/apibgen/internal/diag"
	"github.com/nieomylnieja/apibgen/internal/source"
)

var httpVerbs = map[string]string{
	"get":    "GET",
	"post":   "POST",
	"put":    "PUT",
	"patch":  "PATCH",
	"delete": "DELETE",
}

// Scanner walks syntax trees looking for qualifying route registrations and
// assembles the documentation model. Discovery order is the depth-first,
// pre-order traversal of each file, files in program order; it is the sole
// ordering authority for routers, groups and blocks.
type Scanner struct {
	prog       *source.Program
	resolver   *Resolver
	cfg        *config.Config
	rep        diag.Reporter
	recognized map[string]bool
	cmaps      map[*source.File]ast.CommentMap
}

// NewScanner builds a scanner over a loaded program.
func NewScanner(prog *source.Program, cfg *config.Config, rep diag.Reporter) *Scanner {
	recognized := make(map[string]bool, len(cfg.Routers))
	for _, name := range cfg.Routers {
		recognized[name] = true
	}
	return &Scanner{
		prog:       prog,
		resolver:   NewResolver(prog.Packages),
		cfg:        cfg,
		rep:        rep,
		recognized: recognized,
		cmaps:      make(map[*source.File]ast.CommentMap),
	}
}

// Scan traverses every file of the program and returns one router per
// routing-object binding, in first-encountered-binding order. Bindings are
// merged across files and variable names: two identifiers resolving to the
// same object, directly or through aliasing, document a single router.
func (s *Scanner) Scan() ([]*Router, error) {
	var bindings []types.Object
	blocks := make(map[types.Object][]*Block)
	for _, f := range s.prog.Files {
		if err := s.scanFileInto(f, &bindings, blocks); err != nil {
			return nil, err
		}
	}
	return s.buildRouters(bindings, blocks)
}

// ScanFile scans a single file in isolation.
func (s *Scanner) ScanFile(f *source.File) ([]*Router, error) {
	var bindings []types.Object
	blocks := make(map[types.Object][]*Block)
	if err := s.scanFileInto(f, &bindings, blocks); err != nil {
		return nil, err
	}
	return s.buildRouters(bindings, blocks)
}

func (s *Scanner) scanFileInto(f *source.File, bindings *[]types.Object, blocks map[types.Object][]*Block) error {
	var fatal error
	ast.Inspect(f.Syntax, func(n ast.Node) bool {
		if fatal != nil {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		block, obj, err := s.scanCall(f, call)
		if err != nil {
			fatal = err
			return false
		}
		if block == nil {
			return true
		}
		if _, seen := blocks[obj]; !seen {
			*bindings = append(*bindings, obj)
		}
		blocks[obj] = append(blocks[obj], block)
		return true
	})
	return fatal
}

// scanCall inspects one call expression. It returns a non-nil block for a
// successfully documented registration, a nil block for anything skipped
// (diagnosed when warranted), and an error only for run-fatal conditions.
func (s *Scanner) scanCall(f *source.File, call *ast.CallExpr) (*Block, types.Object, error) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil, nil, nil
	}
	method, ok := httpVerbs[strings.ToLower(sel.Sel.Name)]
	if !ok {
		return nil, nil, nil
	}
	recv, ok := sel.X.(*ast.Ident)
	if !ok {
		return nil, nil, nil
	}
	obj := f.Info.Uses[recv]
	if obj == nil || !s.recognizedType(obj.Type()) {
		return nil, nil, nil
	}
	obj = s.canonicalBinding(obj, 0)

	pos := s.prog.Position(call.Pos())
	if len(call.Args) == 0 {
		s.rep.Report(diag.Warning, pos.Filename, pos.Line, "route registration has no path argument")
		return nil, nil, nil
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		s.rep.Report(diag.Warning, pos.Filename, pos.Line,
			"non-literal path, dynamic paths are not supported")
		return nil, nil, nil
	}
	path, err := strconv.Unquote(lit.Value)
	if err != nil {
		s.rep.Report(diag.Warning, pos.Filename, pos.Line, "non-literal path, dynamic paths are not supported")
		return nil, nil, nil
	}

	text, base := s.leadingComment(f, call)
	if strings.TrimSpace(text) == "" {
		s.rep.Report(diag.Warning, pos.Filename, pos.Line, "undocumented route "+method+" "+path)
		return nil, nil, nil
	}
	c, err := ParseComment(text)
	if err != nil {
		if errors.Is(err, ErrNoDoc) {
			s.rep.Report(diag.Warning, pos.Filename, pos.Line, "undocumented route "+method+" "+path)
		} else {
			s.rep.Report(diag.Error, pos.Filename, pos.Line, err.Error())
		}
		return nil, nil, nil
	}

	block, err := s.buildBlock(method, path, c, pos.Filename, base)
	if err != nil {
		var fatal *FatalError
		if errors.As(err, &fatal) {
			return nil, nil, err
		}
		// Route-local failure, already positioned; the block is dropped
		// while sibling routes keep scanning.
		s.rep.Report(diag.Error, pos.Filename, pos.Line, err.Error())
		return nil, nil, nil
	}
	return block, obj, nil
}

func (s *Scanner) buildBlock(method, path string, c *Comment, file string, base int) (*Block, error) {
	block := &Block{
		Method:      method,
		Path:        path,
		Title:       c.Title,
		Description: c.Description,
	}
	for _, d := range c.Dropped {
		s.rep.Report(diag.Error, file, tagLine(base, d.Line), "malformed @"+string(d.Kind)+" tag: "+d.Err.Error())
	}

	// URL params precede query params in the assembled list regardless of
	// source tag interleaving; each kind keeps its own source order.
	var urlParams, queryParams []Param
	for _, tag := range c.Tags {
		line := tagLine(base, tag.Line)
		switch tag.Kind {
		case TagParam:
			urlParams = append(urlParams, s.buildParam(tag, false, file, line))
		case TagQuery:
			queryParams = append(queryParams, s.buildParam(tag, true, file, line))
		case TagResponse:
			resp, ok, err := s.buildResponse(tag, file, line)
			if err != nil {
				return nil, err
			}
			if ok {
				block.Responses = append(block.Responses, resp)
			}
		case TagBody:
			if block.Body != nil {
				return nil, fatalf("%s:%d: more than one @body tag on route %s %s", file, line, method, path)
			}
			block.Body = s.buildRequestBody(tag, file, line)
		case TagPath:
			s.rep.Report(diag.Warning, file, line, "@path is only valid on a router declaration")
		}
	}
	block.Params = append(urlParams, queryParams...)
	return block, nil
}

func (s *Scanner) buildParam(tag Tag, query bool, file string, line int) Param {
	p := Param{
		Query:       query,
		Name:        tag.Name,
		Type:        tag.Type,
		Description: tag.Description,
	}
	if p.Type == "" {
		p.Type = "string"
	}
	schema, err := s.resolver.Resolve(p.Type)
	if err != nil {
		s.rep.Report(diag.Warning, file, line, err.Error())
		return p
	}
	example, err := Example(schema, s.cfg.Defaults, s.cfg.Examples.Param, tag.Name)
	if err != nil {
		s.rep.Report(diag.Warning, file, line, err.Error())
		return p
	}
	p.Example = example
	return p
}

// buildResponse builds one response. An unparseable status code is a
// route-local fatal for the enclosing route; a type resolution or synthesis
// failure drops only this tag (ok=false).
func (s *Scanner) buildResponse(tag Tag, file string, line int) (Response, bool, error) {
	code, err := strconv.Atoi(tag.Name)
	if err != nil {
		return Response{}, false, errors.Errorf("%s:%d: unparseable response code %q", file, line, tag.Name)
	}
	resp := Response{
		Code:        code,
		When:        tag.Description,
		Type:        tag.Type,
		ContentType: tag.ContentType,
	}
	if tag.HasLiteral {
		resp.Body = tag.Literal
		return resp, true, nil
	}
	if tag.Type == "" {
		return resp, true, nil
	}
	schema, err := s.resolver.Resolve(tag.Type)
	if err != nil {
		s.rep.Report(diag.Error, file, line, err.Error())
		return Response{}, false, nil
	}
	body, err := Example(schema, s.cfg.Defaults, s.cfg.Examples.Response, "")
	if err != nil {
		s.rep.Report(diag.Error, file, line, err.Error())
		return Response{}, false, nil
	}
	resp.Body = body
	resp.Schema = schema
	return resp, true, nil
}

func (s *Scanner) buildRequestBody(tag Tag, file string, line int) *RequestBody {
	body := &RequestBody{Type: tag.Type, ContentType: tag.ContentType}
	if tag.HasLiteral {
		body.Body = tag.Literal
		return body
	}
	if tag.Type == "" {
		return body
	}
	schema, err := s.resolver.Resolve(tag.Type)
	if err != nil {
		s.rep.Report(diag.Error, file, line, err.Error())
		return nil
	}
	value, err := Example(schema, s.cfg.Defaults, s.cfg.Examples.Response, "")
	if err != nil {
		s.rep.Report(diag.Error, file, line, err.Error())
		return nil
	}
	body.Body = value
	body.Schema = schema
	return body
}

func (s *Scanner) buildRouters(bindings []types.Object, blocks map[types.Object][]*Block) ([]*Router, error) {
	routers := make([]*Router, 0, len(bindings))
	for _, obj := range bindings {
		r, ok := s.routerFor(obj)
		if !ok {
			// Binding-local fatal, already diagnosed; sibling routers
			// are still emitted.
			continue
		}
		r.Routes = groupBlocks(blocks[obj])
		routers = append(routers, r)
	}
	return routers, nil
}

// routerFor gathers router-level documentation from the binding's
// declaration-site comment.
func (s *Scanner) routerFor(obj types.Object) (*Router, bool) {
	r := &Router{Path: "/"}
	text, base := s.declarationComment(obj)
	if strings.TrimSpace(text) == "" {
		return r, true
	}
	c, err := ParseComment(text)
	if err != nil {
		return r, true
	}
	r.Title = c.Title
	r.Description = c.Description
	pos := s.prog.Position(obj.Pos())
	seenPath := false
	for _, tag := range c.Tags {
		if tag.Kind != TagPath {
			continue
		}
		if seenPath {
			s.rep.Report(diag.Error, pos.Filename, tagLine(base, tag.Line),
				"more than one @path tag on router "+obj.Name())
			return nil, false
		}
		seenPath = true
		if tag.Name != "" {
			r.Path = tag.Name
		}
	}
	return r, true
}

func groupBlocks(blocks []*Block) []*Group {
	var groups []*Group
	index := make(map[string]*Group)
	for _, block := range blocks {
		g, ok := index[block.Path]
		if !ok {
			g = &Group{Path: block.Path}
			index[block.Path] = g
			groups = append(groups, g)
		}
		g.Methods = append(g.Methods, block)
	}
	return groups
}

func (s *Scanner) recognizedType(t types.Type) bool {
	return s.recognized[typeName(t)]
}

func typeName(t types.Type) string {
	t = types.Unalias(t)
	for {
		ptr, ok := t.(*types.Pointer)
		if !ok {
			break
		}
		t = types.Unalias(ptr.Elem())
	}
	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return ""
}

// canonicalBinding collapses alias chains: a variable declared as a plain
// copy of another routing-object variable documents the same router.
func (s *Scanner) canonicalBinding(obj types.Object, depth int) types.Object {
	if depth > 16 {
		return obj
	}
	f := s.prog.FileAt(obj.Pos())
	if f == nil {
		return obj
	}
	path, _ := astutil.PathEnclosingInterval(f.Syntax, obj.Pos(), obj.Pos())
	for _, n := range path {
		var target *ast.Ident
		switch decl := n.(type) {
		case *ast.AssignStmt:
			target = aliasSource(decl.Lhs, decl.Rhs, obj.Pos())
		case *ast.ValueSpec:
			target = aliasSourceSpec(decl, obj.Pos())
		default:
			continue
		}
		if target == nil {
			return obj
		}
		next := f.Info.Uses[target]
		if next == nil || !s.recognizedType(next.Type()) {
			return obj
		}
		return s.canonicalBinding(next, depth+1)
	}
	return obj
}

func aliasSource(lhs, rhs []ast.Expr, pos token.Pos) *ast.Ident {
	if len(lhs) != len(rhs) {
		return nil
	}
	for i, l := range lhs {
		ident, ok := l.(*ast.Ident)
		if !ok || ident.Pos() != pos {
			continue
		}
		if src, ok := rhs[i].(*ast.Ident); ok {
			return src
		}
		return nil
	}
	return nil
}

func aliasSourceSpec(spec *ast.ValueSpec, pos token.Pos) *ast.Ident {
	if len(spec.Names) != len(spec.Values) {
		return nil
	}
	for i, name := range spec.Names {
		if name.Pos() != pos {
			continue
		}
		if src, ok := spec.Values[i].(*ast.Ident); ok {
			return src
		}
		return nil
	}
	return nil
}

func tagLine(base, line int) int {
	if base <= 0 {
		return line
	}
	return base + line - 1
}
