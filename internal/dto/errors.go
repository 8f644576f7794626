package dto

import "strings"

type ErrorResponse struct {
	Detail string `json:"detail" example:"upstream model call failed"`
}

// FieldError describes one invalid part of a request body. Loc is the path
// to the offending value, starting with "body".
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type ValidationErrorResponse struct {
	Detail []FieldError `json:"detail"`
}

// ValidationError is returned when a request body cannot be decoded or is
// missing required fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Response() ValidationErrorResponse {
	return ValidationErrorResponse{Detail: e.Fields}
}
