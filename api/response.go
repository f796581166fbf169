// Package api defines the envelope every blog API response is wrapped in.
package api

import (
	"blog/schema"
)

// Kind tags which of the three response shapes a Response holds.
type Kind int

const (
	// KindData is a success carrying a payload, optionally with a message.
	KindData Kind = iota
	// KindMessage is a success with only a message.
	KindMessage
	// KindFailure carries an error string and, for validation failures, the
	// offending fields.
	KindFailure
)

// Empty is the payload type of responses that carry no data.
type Empty struct{}

// Response is the {success, data?, message?, error?} envelope. Build it with
// the constructors below rather than by hand.
type Response[T any] struct {
	Success bool                `json:"success"`
	Data    *T                  `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Details []schema.FieldError `json:"details,omitempty"`
}

// Kind reports the shape of r.
func (r Response[T]) Kind() Kind {
	switch {
	case !r.Success:
		return KindFailure
	case r.Data != nil:
		return KindData
	default:
		return KindMessage
	}
}

func Data[T any](v T) Response[T] {
	return Response[T]{Success: true, Data: &v}
}

func DataWithMessage[T any](v T, msg string) Response[T] {
	return Response[T]{Success: true, Data: &v, Message: msg}
}

func Message(msg string) Response[Empty] {
	return Response[Empty]{Success: true, Message: msg}
}

func Failure(msg string) Response[Empty] {
	return Response[Empty]{Error: msg}
}

// ValidationFailure lists every offending field next to a summary error.
func ValidationFailure(err *schema.ValidationError) Response[Empty] {
	return Response[Empty]{Error: MsgValidationFailed, Details: err.Fields}
}

// Messages shared by the server and the client.
const (
	MsgNotFound         = "Post not found"
	MsgCreated          = "Post created successfully"
	MsgUpdated          = "Post updated successfully"
	MsgDeleted          = "Post deleted successfully"
	MsgValidationFailed = "Validation failed"
	MsgMalformedBody    = "Malformed JSON body"
	MsgInternal         = "Internal server error"
)
