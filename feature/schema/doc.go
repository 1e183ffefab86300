// Package schema wires entity descriptors, the model registry and the
// reconciliation engine into the application.
//
// # Service
//
// Service compiles descriptors and reconciles them under a policy:
//
//   - Validate fails on the first missing or drifted entity. With a publisher
//     configured the drift's remediation script is written to object storage.
//   - Update creates missing schema and adds new columns.
//   - Create issues creation statements.
//   - CreateAndTrackForDrop creates and remembers entities; Teardown drops them,
//     tables before the user types they use.
//
// # HTTP Endpoints
//
//	GET    /schema/entities                  compiled entities
//	GET    /schema/entities/:name            one entity
//	GET    /schema/entities/:name/paths/:p   resolve a dotted property path
//	GET    /schema/plan                      pending statements per entity
//	GET    /schema/history?entity=&limit=    applied statements
//	GET    /schema/scripts                   published remediation scripts
//	GET    /schema/scripts/:name             one script
//	DELETE /schema/scripts/:name             remove a script
//
// History and script endpoints answer 503 when their store is disabled.
package schema
