// Package load reads entity definitions from YAML files and turns them into
// the table metadata used for ordering, planning and code generation.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect/sql/schema"
)

// Spec is the content of a schema file.
type Spec struct {
	Entities []*Schema `yaml:"entities"`
}

// Schema describes one entity. Each entity is stored in its own table.
type Schema struct {
	Name    string   `yaml:"name"`
	Table   string   `yaml:"table,omitempty"`
	Comment string   `yaml:"comment,omitempty"`
	Fields  []*Field `yaml:"fields,omitempty"`
	Edges   []*Edge  `yaml:"edges,omitempty"`
	Indexes []*Index `yaml:"indexes,omitempty"`
}

// Field is a scalar column of an entity.
type Field struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Size     int64  `yaml:"size,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
	Unique   bool   `yaml:"unique,omitempty"`
	Default  any    `yaml:"default,omitempty"`
	Comment  string `yaml:"comment,omitempty"`
}

// Edge is a reference from an entity to another, or the same, entity.
//
// A single edge is stored as a foreign key column on the entity's table.
// An edge with many set is stored in a join table referencing both sides.
type Edge struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Field    string `yaml:"field,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Many     bool   `yaml:"many,omitempty"`
	OnDelete string `yaml:"on_delete,omitempty"`
}

// Index is a secondary index on the columns of an entity.
type Index struct {
	Name   string   `yaml:"name,omitempty"`
	Fields []string `yaml:"fields"`
	Unique bool     `yaml:"unique,omitempty"`
}

// ParseFile reads and parses the schema file at path.
func ParseFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read schema: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Parse parses a schema document. Unknown keys are rejected.
func Parse(data []byte) (*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	spec := &Spec{}
	if err := dec.Decode(spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("load: empty schema")
		}
		return nil, fmt.Errorf("load: parse schema: %w", err)
	}
	return spec, nil
}

// TableName returns the table name of the entity.
func (s *Schema) TableName() string {
	if s.Table != "" {
		return s.Table
	}
	return inflect.Pluralize(inflect.Underscore(s.Name))
}

// Column returns the foreign key column name of a single edge.
func (e *Edge) Column() string {
	if e.Field != "" {
		return e.Field
	}
	return inflect.Underscore(e.Name) + "_id"
}

// Tables converts the entities into tables. Entity tables come first, in
// declaration order, followed by the join tables of many edges.
func (s *Spec) Tables() ([]*schema.Table, error) {
	var (
		tables = make([]*schema.Table, 0, len(s.Entities))
		byName = make(map[string]*schema.Table, len(s.Entities))
	)
	for _, e := range s.Entities {
		if e.Name == "" {
			return nil, strata.NewValidationError("entity", errors.New("missing name"))
		}
		if _, ok := byName[e.Name]; ok {
			return nil, strata.NewValidationError(e.Name, errors.New("duplicate entity"))
		}
		t, err := e.table()
		if err != nil {
			return nil, err
		}
		byName[e.Name] = t
		tables = append(tables, t)
	}
	var joins []*schema.Table
	for i, e := range s.Entities {
		for _, ed := range e.Edges {
			ref, ok := byName[ed.Type]
			if !ok {
				return nil, strata.NewValidationError(e.Name+"."+ed.Name, fmt.Errorf("unknown entity %q", ed.Type))
			}
			if ed.Many {
				join, err := joinTable(e, tables[i], ed, ref)
				if err != nil {
					return nil, err
				}
				joins = append(joins, join)
				continue
			}
			if err := foreignKey(e, tables[i], ed, ref); err != nil {
				return nil, err
			}
		}
		for _, idx := range e.Indexes {
			if err := index(e, tables[i], idx); err != nil {
				return nil, err
			}
		}
	}
	return append(tables, joins...), nil
}

// table creates the table of the entity with its id and scalar columns.
func (s *Schema) table() (*schema.Table, error) {
	t := schema.NewTable(s.TableName())
	t.Comment = s.Comment
	t.AddPrimary(&schema.Column{Name: "id", Type: schema.TypeInt64, Increment: true})
	for _, f := range s.Fields {
		if t.HasColumn(f.Name) {
			return nil, strata.NewValidationError(s.Name+"."+f.Name, errors.New("duplicate field"))
		}
		typ, err := schema.ParseColumnType(f.Type)
		if err != nil {
			return nil, strata.NewValidationError(s.Name+"."+f.Name, err)
		}
		t.AddColumn(&schema.Column{
			Name:     f.Name,
			Type:     typ,
			Size:     f.Size,
			Nullable: f.Optional,
			Unique:   f.Unique,
			Default:  f.Default,
			Comment:  f.Comment,
		})
	}
	return t, nil
}

func foreignKey(s *Schema, t *schema.Table, e *Edge, ref *schema.Table) error {
	name := e.Column()
	if t.HasColumn(name) {
		return strata.NewValidationError(s.Name+"."+e.Name, fmt.Errorf("column %q already exists", name))
	}
	onDelete, err := referenceOption(e.OnDelete)
	if err != nil {
		return strata.NewValidationError(s.Name+"."+e.Name, err)
	}
	if onDelete == "" && !e.Required {
		onDelete = schema.SetNull
	}
	c := &schema.Column{Name: name, Type: schema.TypeInt64, Nullable: !e.Required}
	t.AddColumn(c)
	t.AddForeignKey(&schema.ForeignKey{
		Symbol:     t.Name + "_" + name + "_fkey",
		Columns:    []*schema.Column{c},
		RefTable:   ref,
		RefColumns: ref.PrimaryKey,
		OnDelete:   onDelete,
	})
	return nil
}

// joinTable creates the table holding the pairs of a many edge. Its rows
// are removed together with either side.
func joinTable(s *Schema, t *schema.Table, e *Edge, ref *schema.Table) (*schema.Table, error) {
	var (
		owner  = inflect.Underscore(s.Name) + "_id"
		target = inflect.Singularize(inflect.Underscore(e.Name)) + "_id"
	)
	if owner == target {
		return nil, strata.NewValidationError(s.Name+"."+e.Name, fmt.Errorf("join table columns collide on %q", owner))
	}
	join := schema.NewTable(inflect.Underscore(s.Name) + "_" + inflect.Underscore(e.Name))
	join.AddPrimary(&schema.Column{Name: owner, Type: schema.TypeInt64})
	join.AddPrimary(&schema.Column{Name: target, Type: schema.TypeInt64})
	join.AddForeignKey(&schema.ForeignKey{
		Symbol:     join.Name + "_" + owner + "_fkey",
		Columns:    join.Columns[:1],
		RefTable:   t,
		RefColumns: t.PrimaryKey,
		OnDelete:   schema.Cascade,
	})
	join.AddForeignKey(&schema.ForeignKey{
		Symbol:     join.Name + "_" + target + "_fkey",
		Columns:    join.Columns[1:],
		RefTable:   ref,
		RefColumns: ref.PrimaryKey,
		OnDelete:   schema.Cascade,
	})
	return join, nil
}

func index(s *Schema, t *schema.Table, idx *Index) error {
	if len(idx.Fields) == 0 {
		return strata.NewValidationError(s.Name, errors.New("index without fields"))
	}
	for _, name := range idx.Fields {
		if !t.HasColumn(name) {
			return strata.NewValidationError(s.Name, fmt.Errorf("index references unknown column %q", name))
		}
	}
	name := idx.Name
	if name == "" {
		name = t.Name + "_" + strings.Join(idx.Fields, "_")
	}
	t.AddIndex(name, idx.Unique, idx.Fields...)
	return nil
}

func referenceOption(s string) (schema.ReferenceOption, error) {
	if s == "" {
		return "", nil
	}
	opt := schema.ReferenceOption(strings.ToUpper(strings.ReplaceAll(s, "_", " ")))
	switch opt {
	case schema.NoAction, schema.Restrict, schema.Cascade, schema.SetNull, schema.SetDefault:
		return opt, nil
	}
	return "", fmt.Errorf("unknown reference option %q", s)
}
