package blueprint

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nieomylnieja/apibgen/internal/config"
	"github.com/nieomylnieja/apibgen/internal/diag"
)

const routerFixturePrelude = `package fixture

type Router struct{}

func New() *Router { return &Router{} }

func (r *Router) Get(path string, h func())    {}
func (r *Router) Post(path string, h func())   {}
func (r *Router) Put(path string, h func())    {}
func (r *Router) Patch(path string, h func())  {}
func (r *Router) Delete(path string, h func()) {}

type User struct {
	ID   float64 ` + "`json:\"id\"`" + `
	Name string  ` + "`json:\"name\"`" + `
}
`

type recordedDiag struct {
	severity diag.Severity
	line     int
	message  string
}

func scanFixture(t *testing.T, body string) ([]*Router, []recordedDiag, error) {
	t.Helper()
	prog, file := loadFixture(t, routerFixturePrelude+body)
	var diags []recordedDiag
	rep := diag.Func(func(severity diag.Severity, _ string, line int, message string) {
		diags = append(diags, recordedDiag{severity: severity, line: line, message: message})
	})
	s := NewScanner(prog, config.Default(), rep)
	routers, err := s.ScanFile(file)
	return routers, diags, err
}

func mustScanFixture(t *testing.T, body string) ([]*Router, []recordedDiag) {
	t.Helper()
	routers, diags, err := scanFixture(t, body)
	require.NoError(t, err)
	return routers, diags
}

func TestScanner_Ordering(t *testing.T) {
	routers, _ := mustScanFixture(t, `
// Pets
//
// Pet routes.
// @path /pets
var pets = New()

func register() {
	// List users
	// @query {string} name filter
	// @response {User} 200
	pets.Get("/users", nil)

	// Delete user
	// @param {string} id the id
	// @response 204
	pets.Delete("/users/:id", nil)

	// Create user
	// @response {User} 201
	pets.Post("/users", nil)
}
`)
	require.Len(t, routers, 1)
	r := routers[0]
	assert.Equal(t, "/pets", r.Path)
	assert.Equal(t, "Pets", r.Title)
	assert.Equal(t, "Pet routes.", r.Description)

	// Groups keep first-discovery order of their path; blocks within a
	// group keep first-discovery order even when interleaved with other
	// paths in the source.
	require.Len(t, r.Routes, 2)
	assert.Equal(t, "/users", r.Routes[0].Path)
	assert.Equal(t, "/users/:id", r.Routes[1].Path)
	require.Len(t, r.Routes[0].Methods, 2)
	assert.Equal(t, "GET", r.Routes[0].Methods[0].Method)
	assert.Equal(t, "POST", r.Routes[0].Methods[1].Method)
	require.Len(t, r.Routes[1].Methods, 1)
	assert.Equal(t, "DELETE", r.Routes[1].Methods[0].Method)
}

func TestScanner_ParamOrdering(t *testing.T) {
	routers, _ := mustScanFixture(t, `
var pets = New()

func register() {
	// Search
	// @query {string} q the query
	// @param {string} id the id
	// @query {boolean} strict exact matching
	// @response 200
	pets.Get("/search/:id", nil)
}
`)
	require.Len(t, routers, 1)
	block := routers[0].Routes[0].Methods[0]
	require.Len(t, block.Params, 3)
	// URL params precede query params regardless of source interleaving.
	assert.Equal(t, "id", block.Params[0].Name)
	assert.False(t, block.Params[0].Query)
	assert.Equal(t, "q", block.Params[1].Name)
	assert.True(t, block.Params[1].Query)
	assert.Equal(t, "strict", block.Params[2].Name)
}

func TestScanner_ParamExamples(t *testing.T) {
	prog, file := loadFixture(t, routerFixturePrelude+`
var pets = New()

func register() {
	// Fetch
	// @param {string} id the id
	// @query {boolean} strict exact
	// @response 200
	pets.Get("/users/:id", nil)
}
`)
	cfg := config.Default()
	cfg.Examples.Param["id"] = "42"
	s := NewScanner(prog, cfg, discardDiags())
	routers, err := s.ScanFile(file)
	require.NoError(t, err)
	block := routers[0].Routes[0].Methods[0]
	assert.Equal(t, "42", block.Params[0].Example, "param-table override wins")
	assert.Equal(t, false, block.Params[1].Example, "no override falls back to the type default")
}

func TestScanner_Responses(t *testing.T) {
	routers, _ := mustScanFixture(t, `
var pets = New()

func register() {
	// Fetch user
	// @response {User} 200 on success
	// @response 400
	//     bad request
	pets.Get("/users", nil)
}
`)
	block := routers[0].Routes[0].Methods[0]
	require.Len(t, block.Responses, 2)

	typed := block.Responses[0]
	assert.Equal(t, 200, typed.Code)
	assert.Equal(t, "on success", typed.When)
	require.NotNil(t, typed.Schema)
	assert.Equal(t, KindObject, typed.Schema.Kind)
	assert.Equal(t, map[string]any{"id": float64(0), "name": "text"}, typed.Body)

	literal := block.Responses[1]
	assert.Equal(t, 400, literal.Code)
	assert.Equal(t, "bad request", literal.Body)
	assert.Nil(t, literal.Schema)
}

func TestScanner_BodyAndResponseResolveIndependently(t *testing.T) {
	routers, _ := mustScanFixture(t, `
var pets = New()

func register() {
	// Echo user
	// @body {User} {application/json}
	// @response {User} 200
	pets.Post("/users", nil)
}
`)
	block := routers[0].Routes[0].Methods[0]
	require.NotNil(t, block.Body)
	require.Len(t, block.Responses, 1)
	assert.Equal(t, "application/json", block.Body.ContentType)
	require.NotNil(t, block.Body.Schema)
	require.NotNil(t, block.Responses[0].Schema)
	assert.NotSame(t, block.Body.Schema, block.Responses[0].Schema)
	assert.Equal(t, block.Body.Body, block.Responses[0].Body)
}

func TestScanner_SkipsAndDiagnostics(t *testing.T) {
	t.Run("undocumented route", func(t *testing.T) {
		routers, diags := mustScanFixture(t, `
var pets = New()

func register() {
	pets.Get("/users", nil)
}
`)
		assert.Empty(t, routers)
		require.Len(t, diags, 1)
		assert.Equal(t, diag.Warning, diags[0].severity)
		assert.Contains(t, diags[0].message, "undocumented route GET /users")
	})

	t.Run("non-literal path", func(t *testing.T) {
		routers, diags := mustScanFixture(t, `
var pets = New()
var path = "/users"

func register() {
	// Doc
	// @response 200
	pets.Get(path, nil)
}
`)
		assert.Empty(t, routers)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].message, "non-literal path")
	})

	t.Run("malformed response code drops only the route", func(t *testing.T) {
		routers, diags := mustScanFixture(t, `
var pets = New()

func register() {
	// Broken
	// @response abc 200
	pets.Get("/broken", nil)

	// Fine
	// @response 204
	pets.Delete("/fine", nil)
}
`)
		require.Len(t, routers, 1)
		require.Len(t, routers[0].Routes, 1)
		assert.Equal(t, "/fine", routers[0].Routes[0].Path)

		require.NotEmpty(t, diags)
		assert.Equal(t, diag.Error, diags[0].severity)
		assert.Contains(t, diags[0].message, `unparseable response code "abc"`)
		// The diagnostic cites the @response tag's source line.
		assert.Contains(t, diags[0].message, fmt.Sprintf("fixture.go:%d:", 22))
	})

	t.Run("unresolvable response type drops only the tag", func(t *testing.T) {
		routers, diags := mustScanFixture(t, `
var pets = New()

func register() {
	// Doc
	// @response {Missing} 200
	// @response 204
	pets.Get("/users", nil)
}
`)
		require.Len(t, routers, 1)
		block := routers[0].Routes[0].Methods[0]
		require.Len(t, block.Responses, 1)
		assert.Equal(t, 204, block.Responses[0].Code)
		require.NotEmpty(t, diags)
		assert.Contains(t, diags[0].message, `cannot resolve type "Missing"`)
	})
}

func TestScanner_DuplicateBodyIsFatal(t *testing.T) {
	_, _, err := scanFixture(t, `
var pets = New()

func register() {
	// Doc
	// @body {User}
	// @body {User}
	// @response 200
	pets.Post("/users", nil)
}
`)
	require.Error(t, err)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Contains(t, err.Error(), "more than one @body tag")
}

func TestScanner_BindingIdentity(t *testing.T) {
	t.Run("aliases merge into a single router", func(t *testing.T) {
		routers, _ := mustScanFixture(t, `
var pets = New()

func register() {
	// List
	// @response 200
	pets.Get("/users", nil)

	alias := pets
	// Create
	// @response 201
	alias.Post("/users", nil)
}
`)
		require.Len(t, routers, 1)
		require.Len(t, routers[0].Routes, 1)
		assert.Len(t, routers[0].Routes[0].Methods, 2)
	})

	t.Run("distinct instances never merge", func(t *testing.T) {
		routers, _ := mustScanFixture(t, `
// First
// @path /same
var a = New()

// Second
// @path /same
var b = New()

func register() {
	// A
	// @response 200
	a.Get("/x", nil)

	// B
	// @response 200
	b.Get("/x", nil)
}
`)
		require.Len(t, routers, 2)
		assert.Equal(t, "First", routers[0].Title)
		assert.Equal(t, "Second", routers[1].Title)
		assert.Equal(t, "/same", routers[0].Path)
		assert.Equal(t, "/same", routers[1].Path)
	})
}

func TestScanner_RouterPathTag(t *testing.T) {
	t.Run("defaults to root path without a tag", func(t *testing.T) {
		routers, _ := mustScanFixture(t, `
var pets = New()

func register() {
	// List
	// @response 200
	pets.Get("/users", nil)
}
`)
		require.Len(t, routers, 1)
		assert.Equal(t, "/", routers[0].Path)
	})

	t.Run("duplicate path tags abort only that binding", func(t *testing.T) {
		routers, diags := mustScanFixture(t, `
// Broken
// @path /a
// @path /b
var broken = New()

// Fine
// @path /ok
var fine = New()

func register() {
	// X
	// @response 200
	broken.Get("/x", nil)

	// Y
	// @response 200
	fine.Get("/y", nil)
}
`)
		require.Len(t, routers, 1)
		assert.Equal(t, "/ok", routers[0].Path)
		require.NotEmpty(t, diags)
		assert.Equal(t, diag.Error, diags[0].severity)
		assert.Contains(t, diags[0].message, "more than one @path tag")
	})
}

func discardDiags() diag.Reporter {
	return diag.Func(func(diag.Severity, string, int, string) {})
}
