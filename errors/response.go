package errors

import (
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// GenericMessage is the top-level message of every error sent to clients.
const GenericMessage = "An error occurred"

// Extension keys.
const (
	ExtensionCode    = "code"
	ExtensionMessage = "message"
	ExtensionField   = "field"
)

// Response is the JSON body returned to clients.
type Response struct {
	Message    string             `json:"message"`
	Extensions ResponseExtensions `json:"extensions"`
}

// ResponseExtensions carries the structured part of a Response.
// Pointers distinguish an absent detail from an empty one.
type ResponseExtensions struct {
	Code    string  `json:"code"`
	Message *string `json:"message,omitempty"`
	Field   *string `json:"field,omitempty"`
}

// encodable returns e, or Unhandled(nil) when e carries an undeclared code
// such as the zero value.
func (e Error) encodable() Error {
	if !e.code.IsValid() {
		return Unhandled(nil)
	}
	return e
}

// Extensions returns the structured extension object: code always,
// message and field only when set on e.
func (e Error) Extensions() map[string]any {
	e = e.encodable()
	ext := map[string]any{ExtensionCode: e.code.String()}
	if e.hasMessage {
		ext[ExtensionMessage] = e.message
	}
	if e.hasField {
		ext[ExtensionField] = e.field
	}
	return ext
}

// ToResponse converts e to its client-facing JSON representation.
func (e Error) ToResponse() Response {
	e = e.encodable()
	r := Response{
		Message:    GenericMessage,
		Extensions: ResponseExtensions{Code: e.code.String()},
	}
	if e.hasMessage {
		msg := e.message
		r.Extensions.Message = &msg
	}
	if e.hasField {
		field := e.field
		r.Extensions.Field = &field
	}
	return r
}

// ToGraphQL converts e to a GraphQL error with the same extension object.
func (e Error) ToGraphQL() *gqlerror.Error {
	return &gqlerror.Error{
		Message:    GenericMessage,
		Extensions: e.Extensions(),
	}
}
