package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/strata"
)

// ColumnType is the logical type of a column. It is rendered to a concrete
// database type per dialect.
type ColumnType uint8

// Column types.
const (
	TypeInvalid ColumnType = iota
	TypeBool
	TypeInt
	TypeInt64
	TypeFloat
	TypeString
	TypeText
	TypeBytes
	TypeTime
	TypeUUID
	TypeJSON
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat:   "float",
	TypeString:  "string",
	TypeText:    "text",
	TypeBytes:   "bytes",
	TypeTime:    "time",
	TypeUUID:    "uuid",
	TypeJSON:    "json",
}

// String returns the name of the type.
func (t ColumnType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("ColumnType(%d)", t)
}

var typeConsts = [...]string{
	TypeBool:   "TypeBool",
	TypeInt:    "TypeInt",
	TypeInt64:  "TypeInt64",
	TypeFloat:  "TypeFloat",
	TypeString: "TypeString",
	TypeText:   "TypeText",
	TypeBytes:  "TypeBytes",
	TypeTime:   "TypeTime",
	TypeUUID:   "TypeUUID",
	TypeJSON:   "TypeJSON",
}

// ConstName returns the constant name of the type, or an empty string for
// invalid types. It's used by the code generator.
func (t ColumnType) ConstName() string {
	if int(t) < len(typeConsts) {
		return typeConsts[t]
	}
	return ""
}

// Integer reports whether t is an integer type.
func (t ColumnType) Integer() bool { return t == TypeInt || t == TypeInt64 }

// ParseColumnType returns the ColumnType with the given name.
func ParseColumnType(s string) (ColumnType, error) {
	for t, name := range typeNames {
		if t != int(TypeInvalid) && strings.EqualFold(name, s) {
			return ColumnType(t), nil
		}
	}
	return TypeInvalid, fmt.Errorf("schema: unknown column type %q", s)
}

// ReferenceOption for constraint actions.
type ReferenceOption string

// Reference options (actions) specified by ON UPDATE and ON DELETE
// subclauses of the FOREIGN KEY clause.
const (
	NoAction   ReferenceOption = "NO ACTION"
	Restrict   ReferenceOption = "RESTRICT"
	Cascade    ReferenceOption = "CASCADE"
	SetNull    ReferenceOption = "SET NULL"
	SetDefault ReferenceOption = "SET DEFAULT"
)

// ConstName returns the constant name of a reference option. It's used by
// the code generator.
func (r ReferenceOption) ConstName() string {
	switch r {
	case NoAction:
		return "NoAction"
	case Restrict:
		return "Restrict"
	case Cascade:
		return "Cascade"
	case SetNull:
		return "SetNull"
	case SetDefault:
		return "SetDefault"
	}
	return ""
}

// Table schema definition.
type Table struct {
	Name        string
	Columns     []*Column
	PrimaryKey  []*Column
	ForeignKeys []*ForeignKey
	Indexes     []*Index
	Comment     string
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn adds a new column to the table.
func (t *Table) AddColumn(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	return t
}

// AddPrimary adds a new primary key column to the table.
func (t *Table) AddPrimary(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	t.PrimaryKey = append(t.PrimaryKey, c)
	return t
}

// AddForeignKey adds a foreign key to the table and sets its owning table.
func (t *Table) AddForeignKey(fk *ForeignKey) *Table {
	fk.Table = t
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return t
}

// AddIndex creates and adds a new index on the named columns. Unknown
// column names are kept so ValidateTable can report them.
func (t *Table) AddIndex(name string, unique bool, columns ...string) *Table {
	idx := &Index{Name: name, Unique: unique}
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			c = &Column{Name: name}
		}
		idx.Columns = append(idx.Columns, c)
	}
	t.Indexes = append(t.Indexes, idx)
	return t
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Index returns the index with the given name.
func (t *Table) Index(name string) (*Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return nil, false
}

// Column schema definition.
type Column struct {
	Name      string
	Type      ColumnType
	Size      int64 // max size parameter for string types.
	Nullable  bool
	Unique    bool
	Increment bool // auto increment attribute.
	Default   any  // default value.
	Comment   string
}

// ForeignKey definition for creation.
type ForeignKey struct {
	Symbol     string          // foreign-key name. Generated if empty.
	Table      *Table          // referencing table.
	Columns    []*Column       // table column
	RefTable   *Table          // referenced table.
	RefColumns []*Column       // referenced columns.
	OnUpdate   ReferenceOption // action on update.
	OnDelete   ReferenceOption // action on delete.
}

// Nullable reports whether every referencing column accepts NULL, which
// means rows can be inserted before the referenced rows exist.
func (fk *ForeignKey) Nullable() bool {
	if len(fk.Columns) == 0 {
		return false
	}
	for _, c := range fk.Columns {
		if !c.Nullable {
			return false
		}
	}
	return true
}

// SelfReference reports whether the foreign key references its own table.
func (fk *ForeignKey) SelfReference() bool {
	return fk.Table != nil && fk.Table == fk.RefTable
}

// columnNames returns the names of the given columns.
func columnNames(columns []*Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// Index definition for table index.
type Index struct {
	Name    string
	Unique  bool
	Columns []*Column
}

// TableByName returns the table with the given name.
func TableByName(tables []*Table, name string) (*Table, error) {
	for _, t := range tables {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, strata.NewNotFoundError("table", name)
}
