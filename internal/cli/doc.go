// Package cli implements the command-line interface for cheltenham-going.
//
// The cli package provides the Cobra-based CLI: "serve" runs the HTTP
// endpoint, "check" resolves going once and prints it as text or JSON. Both
// load layered configuration and build the source adapters and resolver the
// same way.
package cli
