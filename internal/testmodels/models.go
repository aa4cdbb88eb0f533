// Package testmodels holds fixture types and annotated routes used by the
// scanner and resolver tests.
package testmodels

// User is a registered account.
type User struct {
	ID      float64  `json:"id"`
	Name    string   `json:"name"`
	Active  bool     `json:"active"`
	Tags    []string `json:"tags"`
	Address Address  `json:"address"`
}

// Address is a postal address.
type Address struct {
	City   string `json:"city"`
	Street string `json:"street"`
}

// UserPage is one page of users.
type UserPage struct {
	Total float64 `json:"total"`
	Items []User  `json:"items"`
}

// CreateUserRequest is the payload accepted when creating a user.
type CreateUserRequest struct {
	Name string `json:"name"`
}

// Labels maps arbitrary label names to values.
type Labels map[string]string
