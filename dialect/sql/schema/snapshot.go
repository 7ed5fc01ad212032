package schema

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion is bumped on incompatible changes to the encoding.
const snapshotVersion = 1

type (
	snapshot struct {
		Version int             `msgpack:"version"`
		Tables  []snapshotTable `msgpack:"tables"`
	}
	snapshotTable struct {
		Name        string               `msgpack:"name"`
		Comment     string               `msgpack:"comment,omitempty"`
		Columns     []snapshotColumn     `msgpack:"columns"`
		PrimaryKey  []string             `msgpack:"pk,omitempty"`
		Indexes     []snapshotIndex      `msgpack:"indexes,omitempty"`
		ForeignKeys []snapshotForeignKey `msgpack:"fks,omitempty"`
	}
	snapshotColumn struct {
		Name      string     `msgpack:"name"`
		Type      ColumnType `msgpack:"type"`
		Size      int64      `msgpack:"size,omitempty"`
		Nullable  bool       `msgpack:"nullable,omitempty"`
		Unique    bool       `msgpack:"unique,omitempty"`
		Increment bool       `msgpack:"increment,omitempty"`
		Default   any        `msgpack:"default,omitempty"`
		Comment   string     `msgpack:"comment,omitempty"`
	}
	snapshotIndex struct {
		Name    string   `msgpack:"name"`
		Unique  bool     `msgpack:"unique,omitempty"`
		Columns []string `msgpack:"columns"`
	}
	snapshotForeignKey struct {
		Symbol     string          `msgpack:"symbol"`
		Columns    []string        `msgpack:"columns"`
		RefTable   string          `msgpack:"ref_table"`
		RefColumns []string        `msgpack:"ref_columns"`
		OnUpdate   ReferenceOption `msgpack:"on_update,omitempty"`
		OnDelete   ReferenceOption `msgpack:"on_delete,omitempty"`
	}
)

// WriteSnapshot encodes the tables to w in MessagePack format. Tables are
// referenced by name, so every referenced table must be part of the list.
func WriteSnapshot(w io.Writer, tables []*Table) error {
	s := snapshot{Version: snapshotVersion}
	for _, t := range tables {
		st := snapshotTable{
			Name:       t.Name,
			Comment:    t.Comment,
			PrimaryKey: columnNames(t.PrimaryKey),
		}
		for _, c := range t.Columns {
			st.Columns = append(st.Columns, snapshotColumn{
				Name:      c.Name,
				Type:      c.Type,
				Size:      c.Size,
				Nullable:  c.Nullable,
				Unique:    c.Unique,
				Increment: c.Increment,
				Default:   c.Default,
				Comment:   c.Comment,
			})
		}
		for _, idx := range t.Indexes {
			st.Indexes = append(st.Indexes, snapshotIndex{Name: idx.Name, Unique: idx.Unique, Columns: columnNames(idx.Columns)})
		}
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil {
				return fmt.Errorf("schema: snapshot: foreign key %q of table %q has no referenced table", fk.Symbol, t.Name)
			}
			st.ForeignKeys = append(st.ForeignKeys, snapshotForeignKey{
				Symbol:     fk.Symbol,
				Columns:    columnNames(fk.Columns),
				RefTable:   fk.RefTable.Name,
				RefColumns: columnNames(fk.RefColumns),
				OnUpdate:   fk.OnUpdate,
				OnDelete:   fk.OnDelete,
			})
		}
		s.Tables = append(s.Tables, st)
	}
	if err := msgpack.NewEncoder(w).Encode(&s); err != nil {
		return fmt.Errorf("schema: snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes tables written by WriteSnapshot.
func ReadSnapshot(r io.Reader) ([]*Table, error) {
	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("schema: snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("schema: snapshot: unsupported version %d", s.Version)
	}
	tables := make([]*Table, len(s.Tables))
	for i, st := range s.Tables {
		t := NewTable(st.Name)
		t.Comment = st.Comment
		for _, sc := range st.Columns {
			t.AddColumn(&Column{
				Name:      sc.Name,
				Type:      sc.Type,
				Size:      sc.Size,
				Nullable:  sc.Nullable,
				Unique:    sc.Unique,
				Increment: sc.Increment,
				Default:   sc.Default,
				Comment:   sc.Comment,
			})
		}
		pk, err := lookupColumns(t, st.PrimaryKey)
		if err != nil {
			return nil, err
		}
		t.PrimaryKey = pk
		for _, si := range st.Indexes {
			t.AddIndex(si.Name, si.Unique, si.Columns...)
		}
		tables[i] = t
	}
	for i, st := range s.Tables {
		t := tables[i]
		for _, sf := range st.ForeignKeys {
			ref, err := TableByName(tables, sf.RefTable)
			if err != nil {
				return nil, fmt.Errorf("schema: snapshot: foreign key %q: %w", sf.Symbol, err)
			}
			fk := &ForeignKey{Symbol: sf.Symbol, RefTable: ref, OnUpdate: sf.OnUpdate, OnDelete: sf.OnDelete}
			if fk.Columns, err = lookupColumns(t, sf.Columns); err != nil {
				return nil, err
			}
			if fk.RefColumns, err = lookupColumns(ref, sf.RefColumns); err != nil {
				return nil, err
			}
			t.AddForeignKey(fk)
		}
	}
	return tables, nil
}

func lookupColumns(t *Table, names []string) ([]*Column, error) {
	var columns []*Column
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("schema: snapshot: table %q has no column %q", t.Name, name)
		}
		columns = append(columns, c)
	}
	return columns, nil
}
