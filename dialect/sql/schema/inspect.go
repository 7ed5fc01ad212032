package schema

import (
	"context"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/strata/dialect"
)

// Inspect reads the tables of a live database and returns them in creation
// order. An empty schema name selects the current schema of the connection.
func Inspect(ctx context.Context, db schema.ExecQuerier, name, schemaName string) ([]*Table, error) {
	drv, err := atlasDriver(db, name)
	if err != nil {
		return nil, err
	}
	s, err := drv.InspectSchema(ctx, schemaName, nil)
	if err != nil {
		return nil, fmt.Errorf("schema: inspect: %w", err)
	}
	tables := make([]*Table, 0, len(s.Tables))
	for _, at := range s.Tables {
		if strings.HasPrefix(at.Name, "sqlite_") {
			continue
		}
		tables = append(tables, convertTable(name, at))
	}
	for _, at := range s.Tables {
		t, err := TableByName(tables, at.Name)
		if err != nil {
			continue
		}
		if err := convertForeignKeys(tables, t, at); err != nil {
			return nil, err
		}
	}
	order, err := SortTables(tables, WithBreaker(BreakAny), OnlyCycles())
	if err != nil {
		return nil, err
	}
	return order.Tables, nil
}

func atlasDriver(db schema.ExecQuerier, name string) (migrate.Driver, error) {
	switch name {
	case dialect.MySQL:
		return mysql.Open(db)
	case dialect.Postgres:
		return postgres.Open(db)
	case dialect.SQLite:
		return sqlite.Open(db)
	}
	return nil, fmt.Errorf("schema: unsupported dialect %q", name)
}

func convertTable(name string, at *schema.Table) *Table {
	t := NewTable(at.Name)
	for _, ac := range at.Columns {
		c := &Column{
			Name:     ac.Name,
			Nullable: ac.Type.Null,
			Default:  defaultOf(ac.Default),
		}
		c.Type, c.Size = columnTypeOf(name, ac.Type)
		t.AddColumn(c)
	}
	if at.PrimaryKey != nil {
		for _, p := range at.PrimaryKey.Parts {
			if p.C == nil {
				continue
			}
			if c, ok := t.Column(p.C.Name); ok {
				t.PrimaryKey = append(t.PrimaryKey, c)
			}
		}
		// A single integer key is generated by the database on all dialects.
		if len(t.PrimaryKey) == 1 && t.PrimaryKey[0].Type.Integer() {
			t.PrimaryKey[0].Increment = true
		}
	}
	for _, idx := range at.Indexes {
		var cols []string
		for _, p := range idx.Parts {
			if p.C != nil {
				cols = append(cols, p.C.Name)
			}
		}
		if len(cols) == 0 {
			continue
		}
		if idx.Unique && len(cols) == 1 && uniqueConstraint(at.Name, cols[0], idx.Name) {
			if c, ok := t.Column(cols[0]); ok {
				c.Unique = true
			}
			continue
		}
		t.AddIndex(idx.Name, idx.Unique, cols...)
	}
	return t
}

// uniqueConstraint reports whether the index was created by a UNIQUE column
// attribute rather than by CREATE INDEX.
func uniqueConstraint(table, column, index string) bool {
	return strings.HasPrefix(index, "sqlite_autoindex_") ||
		index == table+"_"+column+"_key" ||
		index == column
}

func convertForeignKeys(tables []*Table, t *Table, at *schema.Table) error {
	for _, afk := range at.ForeignKeys {
		ref, err := TableByName(tables, afk.RefTable.Name)
		if err != nil {
			return fmt.Errorf("schema: foreign key %q of table %q: %w", afk.Symbol, at.Name, err)
		}
		fk := &ForeignKey{
			Symbol:   afk.Symbol,
			RefTable: ref,
			OnUpdate: ReferenceOption(afk.OnUpdate),
			OnDelete: ReferenceOption(afk.OnDelete),
		}
		for _, ac := range afk.Columns {
			if c, ok := t.Column(ac.Name); ok {
				fk.Columns = append(fk.Columns, c)
			}
		}
		for _, ac := range afk.RefColumns {
			if c, ok := ref.Column(ac.Name); ok {
				fk.RefColumns = append(fk.RefColumns, c)
			}
		}
		t.AddForeignKey(fk)
	}
	return nil
}

func columnTypeOf(name string, ct *schema.ColumnType) (ColumnType, int64) {
	switch t := ct.Type.(type) {
	case *schema.BoolType:
		return TypeBool, 0
	case *schema.IntegerType:
		if strings.Contains(strings.ToLower(t.T), "big") || name == dialect.SQLite {
			return TypeInt64, 0
		}
		return TypeInt, 0
	case *schema.FloatType, *schema.DecimalType:
		return TypeFloat, 0
	case *schema.StringType:
		typ := strings.ToLower(t.T)
		if typ == "char" && t.Size == 36 {
			return TypeUUID, 0
		}
		if strings.Contains(typ, "text") && name != dialect.SQLite {
			return TypeText, 0
		}
		return TypeString, int64(t.Size)
	case *schema.BinaryType:
		return TypeBytes, 0
	case *schema.TimeType:
		return TypeTime, 0
	case *schema.JSONType:
		return TypeJSON, 0
	case *schema.UUIDType:
		return TypeUUID, 0
	}
	// Types the drivers do not classify.
	switch raw := strings.ToLower(ct.Raw); {
	case raw == "uuid":
		return TypeUUID, 0
	case strings.HasPrefix(raw, "json"):
		return TypeJSON, 0
	}
	return TypeString, 0
}

func defaultOf(x schema.Expr) any {
	switch x := x.(type) {
	case *schema.Literal:
		return strings.Trim(x.V, "'")
	case *schema.RawExpr:
		return x.X
	}
	return nil
}
