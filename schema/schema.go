// Package schema validates posts and post payloads before they reach a store.
//
// Every check reports all offending fields at once. Field names are the JSON
// names used on the wire so API callers and the UI can attach messages to
// their own inputs.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"blog/domain"
)

// ErrMalformedBody is returned when a payload is not a JSON object.
var ErrMalformedBody = errors.New("malformed JSON body")

// FieldError names one offending field and why it was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Messages returns the failures keyed by field name.
func (e *ValidationError) Messages() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Message
		}
	}
	return m
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// Post validates a complete post as returned by a store.
func Post(p domain.Post) error {
	return check(p)
}

// Create validates a creation payload.
func Create(p domain.CreatePost) error {
	return check(p)
}

// Update validates a partial update payload. An empty payload is valid.
func Update(p domain.UpdatePost) error {
	return check(p)
}

// DecodeCreate reads a JSON creation payload from r and validates it.
func DecodeCreate(r io.Reader) (domain.CreatePost, error) {
	var p domain.CreatePost
	if err := decodeAndCheck(r, &p); err != nil {
		return domain.CreatePost{}, err
	}
	return p, nil
}

// DecodeUpdate reads a JSON update payload from r and validates it. Absent
// fields stay nil; an explicit null is rejected like any other wrong type.
func DecodeUpdate(r io.Reader) (domain.UpdatePost, error) {
	var p domain.UpdatePost
	if err := decodeAndCheck(r, &p); err != nil {
		return domain.UpdatePost{}, err
	}
	return p, nil
}

// decodeAndCheck decodes into the struct pointed to by v and validates it.
// Type errors and rule violations are reported together, one entry per
// field, in declaration order.
func decodeAndCheck(r io.Reader, v any) error {
	typeErrs, err := decode(r, v)
	if err != nil {
		return err
	}

	err = check(v)
	if len(typeErrs) == 0 {
		return err
	}
	var verr *ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}

	out := &ValidationError{}
	t := reflect.TypeOf(v).Elem()
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		if fe, ok := typeErrs[name]; ok {
			out.Fields = append(out.Fields, fe)
			continue
		}
		if verr == nil {
			continue
		}
		for _, fe := range verr.Fields {
			if fe.Field == name {
				out.Fields = append(out.Fields, fe)
			}
		}
	}
	return out
}

// decode reads exactly one JSON object from r into the struct pointed to by
// v. Fields holding a value of the wrong type are left zero and returned
// keyed by JSON name; anything that is not a single object is malformed.
func decode(r io.Reader, v any) (map[string]FieldError, error) {
	dec := json.NewDecoder(r)
	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected an object", ErrMalformedBody)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the object", ErrMalformedBody)
	}

	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()
	typeErrs := make(map[string]FieldError)
	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		msg, ok := raw[name]
		if !ok {
			continue
		}
		field := rv.Field(i)
		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			typeErrs[name] = FieldError{Field: name, Message: fmt.Sprintf("Expected %s, received null", kindName(field.Type()))}
			continue
		}

		err := json.Unmarshal(msg, field.Addr().Interface())
		var typeErr *json.UnmarshalTypeError
		switch {
		case err == nil:
		case errors.As(err, &typeErr):
			field.Set(reflect.Zero(field.Type()))
			typeErrs[name] = FieldError{Field: name, Message: fmt.Sprintf("Expected %s, received %s", kindName(typeErr.Type), typeErr.Value)}
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
	}
	return typeErrs, nil
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind().String()
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validating %T: %w", v, err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(errs))}
	for _, fe := range errs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() + "/" + fe.Tag() {
	case "title/min":
		return "Title is required"
	case "title/max":
		return "Title must be less than 100 characters"
	case "content/min":
		return "Content is required"
	case "id/uuid":
		return "Invalid uuid"
	case "updatedAt/gtefield":
		return "updatedAt must not be before createdAt"
	}

	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		return fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("Must contain at most %s character(s)", fe.Param())
	}
	return fmt.Sprintf("Failed on %q", fe.Tag())
}
