// Package gen generates Go code describing a set of tables.
//
// The generated package holds one file per table, declaring the table's
// columns and its schema.Table value, and a schema.go file holding the
// Tables slice in creation order:
//
//	Schema file (YAML)
//	        ↓
//	   load.Spec.Tables
//	        ↓
//	   schema.SortTables
//	        ↓
//	   Generator (jennifer)
//	        ↓
//	   Generated code (migrate/)
//
// Foreign keys reference their tables through an init function in
// schema.go, so tables that reference each other compile without
// initialization cycles.
//
// # Error Handling
//
//   - ConfigError: invalid generator configuration
//   - GenerationError: a file could not be rendered, formatted or written
//
// Example error handling:
//
//	if err := gen.Generate(ctx, tables, cfg); err != nil {
//		if errors.Is(err, gen.ErrMissingConfig) {
//			// fix the configuration
//		}
//		if errors.Is(err, strata.ErrInvalidSchema) {
//			// fix the schema
//		}
//	}
package gen
