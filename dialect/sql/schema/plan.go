package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
)

// Plan is an ordered list of DDL statements for one dialect.
type Plan struct {
	ID      uuid.UUID
	Dialect string
	Stmts   []string
}

// String returns the statements of the plan as a SQL script.
func (p *Plan) String() string {
	var sb strings.Builder
	for _, stmt := range p.Stmts {
		sb.WriteString(stmt)
		sb.WriteString(";\n")
	}
	return sb.String()
}

// PlanCreate returns the statements that create the given tables, their
// indexes and their foreign keys.
//
// Tables are created in dependency order. Foreign keys that close a cycle
// between tables are added by ALTER TABLE after all tables exist, except on
// SQLite which cannot add constraints to existing tables and does not check
// references at creation time.
func PlanCreate(name string, tables []*Table) (*Plan, error) {
	p, err := newPlan(name, tables)
	if err != nil {
		return nil, err
	}
	order, err := SortTables(tables, WithBreaker(BreakAny), OnlyCycles())
	if err != nil {
		return nil, err
	}
	inline := name == dialect.SQLite
	for _, t := range order.Tables {
		p.Stmts = append(p.Stmts, createTable(name, t, func(fk *ForeignKey) bool {
			return inline || !order.IsDeferred(fk)
		}))
	}
	for _, t := range order.Tables {
		for _, idx := range t.Indexes {
			p.Stmts = append(p.Stmts, createIndex(name, t, idx))
		}
	}
	if !inline {
		for _, fk := range order.Deferred {
			p.Stmts = append(p.Stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", sql.Quote(name, fk.Table.Name), constraint(name, fk)))
		}
	}
	return p, nil
}

// PlanDrop returns the statements that drop the given tables. Referencing
// tables are dropped before the tables they reference, and foreign keys
// that close a cycle are dropped first.
func PlanDrop(name string, tables []*Table) (*Plan, error) {
	p, err := newPlan(name, tables)
	if err != nil {
		return nil, err
	}
	order, err := SortTables(tables, WithBreaker(BreakAny), OnlyCycles())
	if err != nil {
		return nil, err
	}
	if name != dialect.SQLite {
		for _, fk := range order.Deferred {
			drop := "CONSTRAINT"
			if name == dialect.MySQL {
				drop = "FOREIGN KEY"
			}
			p.Stmts = append(p.Stmts, fmt.Sprintf("ALTER TABLE %s DROP %s %s", sql.Quote(name, fk.Table.Name), drop, sql.Quote(name, symbol(fk))))
		}
	}
	for _, t := range order.ReverseOrder() {
		p.Stmts = append(p.Stmts, "DROP TABLE IF EXISTS "+sql.Quote(name, t.Name))
	}
	return p, nil
}

func newPlan(name string, tables []*Table) (*Plan, error) {
	if !dialect.Supported(name) {
		return nil, fmt.Errorf("schema: unsupported dialect %q", name)
	}
	if res := ValidateSchema(tables); res.HasErrors() {
		return nil, fmt.Errorf("%w:\n%s", strata.ErrInvalidSchema, res)
	}
	return &Plan{ID: uuid.New(), Dialect: name}, nil
}

func createTable(name string, t *Table, inline func(*ForeignKey) bool) string {
	var (
		defs     []string
		sqlitePK = name == dialect.SQLite && len(t.PrimaryKey) == 1 && t.PrimaryKey[0].Increment
	)
	for _, c := range t.Columns {
		defs = append(defs, columnDef(name, c, sqlitePK && c == t.PrimaryKey[0]))
	}
	if len(t.PrimaryKey) > 0 && !sqlitePK {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", sql.QuoteList(name, columnNames(t.PrimaryKey))))
	}
	for _, fk := range t.ForeignKeys {
		if inline(fk) {
			defs = append(defs, constraint(name, fk))
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", sql.Quote(name, t.Name), strings.Join(defs, ", "))
}

// columnDef renders a column definition. SQLite only supports auto increment
// on an inline INTEGER PRIMARY KEY.
func columnDef(name string, c *Column, sqlitePK bool) string {
	var b strings.Builder
	b.WriteString(sql.Quote(name, c.Name))
	b.WriteByte(' ')
	b.WriteString(columnType(name, c))
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	switch {
	case sqlitePK:
		b.WriteString(" PRIMARY KEY AUTOINCREMENT")
	case c.Increment && name == dialect.MySQL:
		b.WriteString(" AUTO_INCREMENT")
	case c.Increment && name == dialect.Postgres:
		b.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(defaultValue(name, c.Default))
	}
	return b.String()
}

func columnType(name string, c *Column) string {
	switch c.Type {
	case TypeBool:
		return "boolean"
	case TypeInt:
		if name == dialect.MySQL {
			return "int"
		}
		return "integer"
	case TypeInt64:
		if name == dialect.SQLite {
			return "integer"
		}
		return "bigint"
	case TypeFloat:
		switch name {
		case dialect.Postgres:
			return "double precision"
		case dialect.SQLite:
			return "real"
		}
		return "double"
	case TypeString:
		if name == dialect.SQLite {
			return "text"
		}
		size := c.Size
		if size <= 0 {
			size = 255
		}
		return "varchar(" + strconv.FormatInt(size, 10) + ")"
	case TypeText:
		if name == dialect.MySQL {
			return "longtext"
		}
		return "text"
	case TypeBytes:
		if name == dialect.Postgres {
			return "bytea"
		}
		return "blob"
	case TypeTime:
		switch name {
		case dialect.Postgres:
			return "timestamp with time zone"
		case dialect.SQLite:
			return "datetime"
		}
		return "timestamp"
	case TypeUUID:
		if name == dialect.MySQL {
			return "char(36)"
		}
		return "uuid"
	case TypeJSON:
		if name == dialect.Postgres {
			return "jsonb"
		}
		return "json"
	}
	return c.Type.String()
}

func defaultValue(name string, v any) string {
	switch v := v.(type) {
	case string:
		return sql.Literal(name, v)
	case bool:
		if name == dialect.Postgres {
			return strconv.FormatBool(v)
		}
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(v)
	}
}

func constraint(name string, fk *ForeignKey) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		sql.Quote(name, symbol(fk)),
		sql.QuoteList(name, columnNames(fk.Columns)),
		sql.Quote(name, fk.RefTable.Name),
		sql.QuoteList(name, columnNames(fk.RefColumns)),
	)
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE " + string(fk.OnUpdate))
	}
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE " + string(fk.OnDelete))
	}
	return b.String()
}

// symbol returns the constraint name of the foreign key, derived from its
// table and columns when not set.
func symbol(fk *ForeignKey) string {
	if fk.Symbol != "" {
		return fk.Symbol
	}
	return fk.Table.Name + "_" + strings.Join(columnNames(fk.Columns), "_") + "_fkey"
}

func createIndex(name string, t *Table, idx *Index) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, sql.Quote(name, idx.Name), sql.Quote(name, t.Name), sql.QuoteList(name, columnNames(idx.Columns)))
}
