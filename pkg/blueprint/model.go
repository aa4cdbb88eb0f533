package blueprint

// Router aggregates every documented route registered on one routing-object
// binding. Bindings are identified by the symbolic identity of the variable
// they resolve to, never by its source text.
type Router struct {
	// Path is the router-level path prefix, "/" unless a @path tag says otherwise.
	Path        string
	Title       string
	Description string
	// Routes groups blocks by relative path in first-discovery order.
	Routes []*Group
}

// Group collects the blocks registered under one relative path.
type Group struct {
	Path string
	// Methods holds one block per documented registration, in discovery order.
	Methods []*Block
}

// Block is the documentation of a single route registration:
// exactly one HTTP method and one path.
type Block struct {
	Method      string
	Path        string
	Title       string
	Description string
	// Params lists URL params first, then query params; each kind keeps
	// its source tag order.
	Params []Param
	// Responses preserve @response tag order.
	Responses []Response
	// Body is the request body, nil unless a @body tag is present.
	Body *RequestBody
}

// Param documents a URL or query parameter.
type Param struct {
	// Query distinguishes query parameters from URL path parameters.
	Query       bool
	Name        string
	Type        string
	Description string
	Example     any
}

// Response documents one @response tag.
type Response struct {
	Code int
	// When is the free-form condition text following the status code.
	When string
	// Type is the declared data-type name, empty when the tag had none.
	Type string
	// ContentType is empty for the implicit text/plain marker.
	ContentType string
	// Body is the literal override or the synthesized example, nil when
	// the tag carried neither a type nor a literal body.
	Body any
	// Schema is the resolved structural schema, nil for literal bodies.
	Schema *Schema
}

// RequestBody documents the @body tag of a block.
type RequestBody struct {
	Type        string
	ContentType string
	Body        any
	Schema      *Schema
}
