//go:build integration

// Package testdb provides helpers for database integration tests.
//
// Tests obtain a connection with GetTestDBWithT, which skips the test when no
// database is configured and applies the schema migrations once per process.
// Each test then runs its work inside WithTx, whose transaction is always
// rolled back so tests leave no data behind and can run in parallel:
//
//	func TestPackageStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresPackageStore(tx, nil)
//	        ...
//	    })
//	}
package testdb
