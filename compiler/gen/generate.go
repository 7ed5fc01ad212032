package gen

import (
	"context"
	"fmt"
	"go/token"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect/sql/schema"
)

const (
	schemaPkg = "github.com/syssam/strata/dialect/sql/schema"
	header    = "Code generated by strata. DO NOT EDIT."
)

// Config holds the options of a generation run.
type Config struct {
	// Target is the output directory.
	Target string
	// Package is the name of the generated package. Defaults to the base
	// name of Target.
	Package string
	// Workers limits the files written in parallel. Defaults to GOMAXPROCS.
	Workers int
}

// Generator generates the Go description of a set of tables.
type Generator struct {
	cfg     Config
	tables  []*schema.Table // creation order
	byName  map[string]*schema.Table
	idents  map[*schema.Table]string
	files   map[*schema.Table]string
	metrics *WriterMetrics
}

// New returns a generator for the given tables. The tables are validated
// and sorted in creation order, deferring the foreign keys that close a
// cycle.
func New(tables []*schema.Table, cfg Config) (*Generator, error) {
	if cfg.Target == "" {
		return nil, NewConfigError("Target", nil, "missing target directory")
	}
	if cfg.Package == "" {
		cfg.Package = filepath.Base(cfg.Target)
	}
	if !token.IsIdentifier(cfg.Package) {
		return nil, NewConfigError("Package", cfg.Package, "invalid package name")
	}
	if cfg.Workers < 0 {
		return nil, NewConfigError("Workers", cfg.Workers, "must not be negative")
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if res := schema.ValidateSchema(tables); res.HasErrors() {
		return nil, fmt.Errorf("%w:\n%s", strata.ErrInvalidSchema, res.String())
	}
	order, err := schema.SortTables(tables, schema.WithBreaker(schema.BreakAny), schema.OnlyCycles())
	if err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:     cfg,
		tables:  order.Tables,
		byName:  make(map[string]*schema.Table, len(tables)),
		idents:  make(map[*schema.Table]string, len(tables)),
		files:   make(map[*schema.Table]string, len(tables)),
		metrics: &WriterMetrics{},
	}
	var (
		caser     = cases.Title(language.English, cases.NoLower)
		usedIdent = make(map[string]string)
		usedFile  = make(map[string]string)
	)
	for _, t := range g.tables {
		id := pascal(caser, t.Name)
		if other, ok := usedIdent[id]; ok {
			return nil, strata.NewValidationError(t.Name, fmt.Errorf("identifier %q is also used by table %q", id, other))
		}
		file := fileName(t.Name)
		if other, ok := usedFile[file]; ok {
			return nil, strata.NewValidationError(t.Name, fmt.Errorf("file %q is also used by table %q", file, other))
		}
		usedIdent[id], usedFile[file] = t.Name, t.Name
		g.byName[t.Name] = t
		g.idents[t] = id
		g.files[t] = file
	}
	return g, nil
}

// Generate writes the Go description of the tables into cfg.Target.
func Generate(ctx context.Context, tables []*schema.Table, cfg Config) error {
	g, err := New(tables, cfg)
	if err != nil {
		return err
	}
	return g.Generate(ctx)
}

// Generate renders and writes all files. Generated files of tables that no
// longer exist are removed.
func (g *Generator) Generate(ctx context.Context) error {
	tasks := make([]fileTask, 0, len(g.tables)+1)
	for _, t := range g.tables {
		f, err := g.tableFile(t)
		if err != nil {
			return NewGenerationError(t.Name, g.files[t], "build file", err)
		}
		tasks = append(tasks, fileTask{name: g.files[t], table: t.Name, file: f})
	}
	tasks = append(tasks, fileTask{name: "schema.go", file: g.schemaFile()})
	w := &writer{outDir: g.cfg.Target, workers: g.cfg.Workers, metrics: g.metrics}
	if err := w.writeAll(ctx, tasks); err != nil {
		return err
	}
	return w.prune(tasks)
}

// Tables returns the tables in the order they are declared in the
// generated Tables slice.
func (g *Generator) Tables() []*schema.Table {
	return g.tables
}

// Metrics returns the metrics of the last Generate call.
func (g *Generator) Metrics() *WriterMetrics {
	return g.metrics
}

func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.cfg.Package)
	f.HeaderComment(header)
	return f
}

// tableFile declares the columns and the table value of t.
func (g *Generator) tableFile(t *schema.Table) (*jen.File, error) {
	var (
		f    = g.newFile()
		id   = g.idents[t]
		cols = id + "Columns"
		tbl  = id + "Table"
	)
	colDefs := make([]jen.Code, 0, len(t.Columns))
	for _, c := range t.Columns {
		d, err := columnDict(c)
		if err != nil {
			return nil, err
		}
		colDefs = append(colDefs, jen.Values(d))
	}
	tdict := jen.Dict{
		jen.Id("Name"):    jen.Lit(t.Name),
		jen.Id("Columns"): jen.Id(cols),
	}
	if t.Comment != "" {
		tdict[jen.Id("Comment")] = jen.Lit(t.Comment)
	}
	if len(t.PrimaryKey) > 0 {
		pk, err := g.columnRefs(t, t.PrimaryKey)
		if err != nil {
			return nil, err
		}
		tdict[jen.Id("PrimaryKey")] = pk
	}
	if len(t.ForeignKeys) > 0 {
		fks := make([]jen.Code, 0, len(t.ForeignKeys))
		for _, fk := range t.ForeignKeys {
			d, err := g.foreignKeyDict(t, fk)
			if err != nil {
				return nil, err
			}
			fks = append(fks, jen.Values(d))
		}
		tdict[jen.Id("ForeignKeys")] = jen.Index().Op("*").Qual(schemaPkg, "ForeignKey").Values(fks...)
	}
	if len(t.Indexes) > 0 {
		idx := make([]jen.Code, 0, len(t.Indexes))
		for _, i := range t.Indexes {
			refs, err := g.columnRefs(t, i.Columns)
			if err != nil {
				return nil, fmt.Errorf("index %q: %w", i.Name, err)
			}
			d := jen.Dict{
				jen.Id("Name"):    jen.Lit(i.Name),
				jen.Id("Columns"): refs,
			}
			if i.Unique {
				d[jen.Id("Unique")] = jen.True()
			}
			idx = append(idx, jen.Values(d))
		}
		tdict[jen.Id("Indexes")] = jen.Index().Op("*").Qual(schemaPkg, "Index").Values(idx...)
	}
	f.Var().Defs(
		jen.Comment(fmt.Sprintf("%s holds the columns for the %q table.", cols, t.Name)),
		jen.Id(cols).Op("=").Index().Op("*").Qual(schemaPkg, "Column").Values(colDefs...),
		jen.Comment(fmt.Sprintf("%s holds the schema information for the %q table.", tbl, t.Name)),
		jen.Id(tbl).Op("=").Op("&").Qual(schemaPkg, "Table").Values(tdict),
	)
	return f, nil
}

// schemaFile declares the Tables slice and links the foreign keys to the
// tables they reference.
func (g *Generator) schemaFile() *jen.File {
	f := g.newFile()
	vars := make([]jen.Code, len(g.tables))
	for i, t := range g.tables {
		vars[i] = jen.Id(g.idents[t] + "Table")
	}
	f.Var().Defs(
		jen.Comment("Tables holds all the tables in the schema, in creation order."),
		jen.Id("Tables").Op("=").Index().Op("*").Qual(schemaPkg, "Table").Values(vars...),
	)
	var links []jen.Code
	for _, t := range g.tables {
		for i, fk := range t.ForeignKeys {
			links = append(links, jen.Id(g.idents[t]+"Table").Dot("ForeignKeys").Index(jen.Lit(i)).Dot("RefTable").
				Op("=").Id(g.idents[g.byName[fk.RefTable.Name]]+"Table"))
		}
	}
	if len(links) > 0 {
		f.Func().Id("init").Params().Block(links...)
	}
	return f
}

func (g *Generator) foreignKeyDict(t *schema.Table, fk *schema.ForeignKey) (jen.Dict, error) {
	ref, ok := g.byName[fk.RefTable.Name]
	if !ok {
		return nil, fmt.Errorf("foreign key %q references unknown table %q", fk.Symbol, fk.RefTable.Name)
	}
	cols, err := g.columnRefs(t, fk.Columns)
	if err != nil {
		return nil, fmt.Errorf("foreign key %q: %w", fk.Symbol, err)
	}
	refCols, err := g.columnRefs(ref, fk.RefColumns)
	if err != nil {
		return nil, fmt.Errorf("foreign key %q: %w", fk.Symbol, err)
	}
	d := jen.Dict{
		jen.Id("Columns"):    cols,
		jen.Id("RefColumns"): refCols,
	}
	if fk.Symbol != "" {
		d[jen.Id("Symbol")] = jen.Lit(fk.Symbol)
	}
	if name := fk.OnUpdate.ConstName(); name != "" {
		d[jen.Id("OnUpdate")] = jen.Qual(schemaPkg, name)
	}
	if name := fk.OnDelete.ConstName(); name != "" {
		d[jen.Id("OnDelete")] = jen.Qual(schemaPkg, name)
	}
	return d, nil
}

// columnRefs returns a slice literal of references into the column
// variable of t.
func (g *Generator) columnRefs(t *schema.Table, cols []*schema.Column) (jen.Code, error) {
	refs := make([]jen.Code, len(cols))
	for i, c := range cols {
		pos := columnIndex(t, c)
		if pos < 0 {
			return nil, fmt.Errorf("table %q has no column %q", t.Name, c.Name)
		}
		refs[i] = jen.Id(g.idents[t] + "Columns").Index(jen.Lit(pos))
	}
	return jen.Index().Op("*").Qual(schemaPkg, "Column").Values(refs...), nil
}

func columnIndex(t *schema.Table, c *schema.Column) int {
	for i := range t.Columns {
		if t.Columns[i] == c {
			return i
		}
	}
	for i := range t.Columns {
		if t.Columns[i].Name == c.Name {
			return i
		}
	}
	return -1
}

func columnDict(c *schema.Column) (jen.Dict, error) {
	typ := c.Type.ConstName()
	if typ == "" {
		return nil, fmt.Errorf("column %q has invalid type %s", c.Name, c.Type)
	}
	d := jen.Dict{
		jen.Id("Name"): jen.Lit(c.Name),
		jen.Id("Type"): jen.Qual(schemaPkg, typ),
	}
	if c.Size > 0 {
		d[jen.Id("Size")] = jen.Lit(int(c.Size))
	}
	if c.Nullable {
		d[jen.Id("Nullable")] = jen.True()
	}
	if c.Unique {
		d[jen.Id("Unique")] = jen.True()
	}
	if c.Increment {
		d[jen.Id("Increment")] = jen.True()
	}
	if c.Comment != "" {
		d[jen.Id("Comment")] = jen.Lit(c.Comment)
	}
	if c.Default != nil {
		switch v := c.Default.(type) {
		case string, bool, int, int64, uint64, float64:
			d[jen.Id("Default")] = jen.Lit(v)
		default:
			return nil, fmt.Errorf("column %q has unsupported default value of type %T", c.Name, v)
		}
	}
	return d, nil
}

// pascal converts a table name like "user_groups" to "UserGroups".
func pascal(caser cases.Caser, name string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		b.WriteString(caser.String(part))
	}
	id := b.String()
	if id == "" || !unicode.IsLetter(rune(id[0])) {
		id = "T" + id
	}
	return id
}

// fileName returns the generated file of a table. The "_table" suffix keeps
// names like "users_test" or "jobs_linux" from being read as build
// constraints.
func fileName(table string) string {
	return strings.ToLower(strings.ReplaceAll(table, ".", "_")) + "_table.go"
}
