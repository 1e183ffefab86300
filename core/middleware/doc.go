// Package middleware groups the fiber middleware mounted in front of the
// schema report API.
//
//   - rayid: tags every request with an X-Ray-ID, reusing one sent by the caller.
//   - auth: requires the configured X-API-Key; an empty key leaves the API open.
//
// The start command mounts rayid first so that rejected requests are still traced.
package middleware
