// Package http implements the HTTP handlers for the screening package API.
// Handlers are a thin layer over the selection service and package
// repository: they parse and validate requests, delegate, and shape
// responses. All business rules live below this package.
//
// Status mapping happens here and only here: malformed JSON or payload
// shape is 400, an unknown path id is 404, and a package whose selection
// violates dependency/conflict rules is 422 with the full validation
// payload. Rule violations inside a validate call are response data with
// status 200, since rendering them is the point of the call.
//
// Currency crosses this boundary as decimal numbers with two-decimal
// precision, derived from the engine's integer cents. Nothing below this
// package ever sees a floating-point dollar amount.
package http
