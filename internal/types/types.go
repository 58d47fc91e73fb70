// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Age bounds for a student record, inclusive on both ends.
const (
	MinAge = 0
	MaxAge = 150
)

// Student represents a stored student record.
//
// ID is a canonical UUID string assigned by the store when the record is
// created. It never changes afterwards; the other three fields are
// replaced together on update.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// StudentInput is the request body accepted by create and update.
//
// Age is a pointer so that a missing "age" key is distinguishable from
// age 0, which is a valid value. The validate tags are checked by the
// go-playground/validator package at the HTTP boundary:
//
//   - required  — field must be present and non-empty
//   - gte / lte — inclusive numeric bounds
//   - email     — RFC 5322 address format
type StudentInput struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   *int   `json:"age"   validate:"required,gte=0,lte=150"`
}

// Student converts a validated input into a record without an ID.
// A nil Age becomes -1 so the store's own range check rejects it.
func (in StudentInput) Student() Student {
	age := -1
	if in.Age != nil {
		age = *in.Age
	}
	return Student{Name: in.Name, Email: in.Email, Age: age}
}

// Summary is the response body of the summary endpoint.
type Summary struct {
	Summary string `json:"summary"`
}
