// Package errors provides the structured error type used across vedit.
//
// A VeditError carries a category, a stable code for programmatic handling,
// an optional source position and free-form context. HTTPStatus maps the
// category to a response status and Fields turns an error into logger
// key/value pairs.
package errors
