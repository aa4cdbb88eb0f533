package testmodels

// Router is a minimal routing object exercising the scanner.
type Router struct{}

// NewRouter returns a fresh routing object.
func NewRouter() *Router { return &Router{} }

// HandlerFunc is a route handler.
type HandlerFunc func()

func (r *Router) Get(path string, h HandlerFunc)    {}
func (r *Router) Post(path string, h HandlerFunc)   {}
func (r *Router) Put(path string, h HandlerFunc)    {}
func (r *Router) Patch(path string, h HandlerFunc)  {}
func (r *Router) Delete(path string, h HandlerFunc) {}

// User service
//
// Everything about user accounts.
// @path /api/v1
var usersRouter = NewRouter()

// RegisterRoutes wires the fixture routes the generator tests scan.
func RegisterRoutes() {
	// List users
	//
	// Returns a page of users visible to the caller.
	// @query {string} name filter by name
	// @response {UserPage} 200
	usersRouter.Get("/users", noop)

	// Create a user
	// @body {CreateUserRequest} {application/json}
	// @response {User} 201
	// @response 409
	//     user already exists
	usersRouter.Post("/users", noop)

	// Fetch a user
	// @param {string} id user identifier
	// @response {User} 200
	usersRouter.Get("/users/:id", noop)
}

func noop() {}
