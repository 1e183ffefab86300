// Package reconcile keeps the live schema of a column-family database in line
// with compiled entity models.
//
// # Policies
//
// Every entity is reconciled under one of four policies:
//
//   - Validate: read the live schema and fail on any difference. Never writes.
//     A missing table or type yields *SchemaMissingError; drift yields
//     *SchemaDriftError carrying the statements that would fix it.
//   - Update: create missing schema, otherwise ALTER to add new columns (and
//     drop removed ones when Options.DropRemovedColumns is set). Type conflicts
//     are never migrated; they are returned in Result.Conflicts and logged.
//   - Create: always issue the CREATE statement.
//   - CreateAndTrackForDrop: like Create, and register the entity with a
//     DropTracker so Engine.Teardown can drop it when the session ends.
//
// # Architecture
//
// 1. Transport: the database collaborator. It reads the catalog fresh on every
//    call and executes DDL. Its errors are returned unchanged.
//
// 2. Diff: compares model properties with live columns by lower-cased name and
//    produces ADD, DROP and CONFLICT changes.
//
// 3. DDL: renders complete statements. ADDs follow model order (partition keys,
//    clustering columns, then the rest); DROPs follow column name order.
//
// 4. Engine: runs the policy state machine. Multi-entity runs create user types
//    before the tables that use them; tuples have no schema and are skipped.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(transport,
//	    reconcile.WithLogger(logger),
//	    reconcile.WithOptions(reconcile.Options{ShowStatements: true}),
//	)
//
//	results, err := engine.Update(ctx, users, address)
//
//	var drift *reconcile.SchemaDriftError
//	if _, err := engine.Validate(ctx, users); errors.As(err, &drift) {
//	    fmt.Println(drift.Remediation())
//	}
package reconcile
