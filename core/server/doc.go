// Package server holds the HTTP server configuration.
//
// The server exposes the schema report endpoints of the feature packages. It
// can be disabled when the process only needs to reconcile at startup.
//
// # Usage
//
// This package is embedded by core/config and read by the start command.
package server
