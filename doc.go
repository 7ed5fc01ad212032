// Package strata is an ORM schema toolkit built around dependency ordering.
//
// Schemas are described as entities (load package), turned into a metadata
// tree of tables, columns and foreign keys (dialect/sql/schema), and ordered
// with a cycle-tolerant directed multigraph (graph package) so that tables are
// created, dropped, seeded and generated in an order that respects their
// foreign keys.
//
// This root package holds the error types shared by the sub-packages:
//
//	if strata.IsNotFound(err) {
//	    // a table or column lookup failed
//	}
//	if errors.Is(err, strata.ErrInvalidSchema) {
//	    // an entity definition was rejected
//	}
package strata
