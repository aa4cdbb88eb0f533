// Package blueprint generates API Blueprint documentation from annotated
// route registrations in Go source code.
//
// It combines three sources of information:
//  1. Route registration calls on recognized routing-object types
//  2. The tag grammar of the comment block above each registration
//  3. Type structure information from the program's type checker
//
// # Annotating routes
//
// A registration qualifies when it is a method call on a variable whose
// named type is recognized (Router, Mux, Engine, Echo or Group by default),
// the method is one of Get, Post, Put, Patch or Delete, and the first
// argument is a literal path string:
//
//	// List users
//	//
//	// Returns the users visible to the caller.
//	// @query {string} name filter by name
//	// @response {UserPage} 200
//	r.Get("/users", listUsers)
//
// The first comment line is the route title, the free-form text after it the
// description. Recognized tags are @param, @query, @response and @body.
// Bracketed type names resolve against the project's declared types; a
// bracket containing "/" is a content type instead:
//
//	// Create a user
//	// @body {CreateUserRequest} {application/json}
//	// @response {User} 201
//	// @response 409
//	//     user already exists
//	r.Post("/users", createUser)
//
// An indented continuation line after @response or @body is a literal
// example and suppresses example synthesis for that tag.
//
// The comment above the router variable's declaration documents the router
// itself; its optional @path tag sets the path prefix for every route:
//
//	// User service
//	//
//	// Everything about user accounts.
//	// @path /api/v1
//	r := NewRouter()
//
// # Generating
//
// [Generate] runs one full pass: it loads the project, scans every file in
// order, and writes the blueprint before invoking the configured after-hook.
// [Watch] reruns full passes on file changes, never concurrently.
//
// Routers, path groups and routes appear in the output strictly in the order
// they are discovered during a depth-first traversal of each file. Identical
// input always produces identical output; object keys in rendered JSON are
// lexically ordered.
package blueprint
