package schema

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestSnapshot(t *testing.T) {
	f := newFixture()
	f.users.Comment = "registered users"
	f.users.Columns[1].Default = "anonymous"

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, f.tables))
	tables, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	require.Equal(t, []string{"posts", "users", "teams"}, tableNames(tables))

	users := tables[1]
	assert.Equal(t, "registered users", users.Comment)
	assert.Equal(t, "anonymous", users.Columns[1].Default)
	assert.Same(t, users.Columns[0], users.PrimaryKey[0])
	require.Len(t, users.ForeignKeys, 2)
	assert.Same(t, tables[2], users.ForeignKeys[0].RefTable)
	assert.Same(t, users, users.ForeignKeys[1].RefTable)
	assert.True(t, users.ForeignKeys[1].SelfReference())
	assert.Equal(t, SetNull, users.ForeignKeys[0].OnDelete)

	posts := tables[0]
	idx, ok := posts.Index("posts_title")
	require.True(t, ok)
	assert.Same(t, posts.Columns[1], idx.Columns[0])
	assert.Equal(t, int64(100), posts.Columns[1].Size)

	// The decoded schema orders like the original one.
	want, err := SortTables(f.tables, WithBreaker(BreakNullable))
	require.NoError(t, err)
	got, err := SortTables(tables, WithBreaker(BreakNullable))
	require.NoError(t, err)
	assert.Equal(t, tableNames(want.Tables), tableNames(got.Tables))
	assert.Equal(t, fkSymbols(want.Deferred), fkSymbols(got.Deferred))
}

func TestSnapshot_Errors(t *testing.T) {
	t.Run("MissingRefTable", func(t *testing.T) {
		tbl := NewTable("t").AddPrimary(&Column{Name: "id", Type: TypeInt64})
		tbl.AddForeignKey(&ForeignKey{Symbol: "t_fk", Columns: tbl.Columns})
		require.ErrorContains(t, WriteSnapshot(&bytes.Buffer{}, []*Table{tbl}), `foreign key "t_fk" of table "t" has no referenced table`)
	})

	t.Run("Version", func(t *testing.T) {
		b, err := msgpack.Marshal(&snapshot{Version: 42})
		require.NoError(t, err)
		_, err = ReadSnapshot(bytes.NewReader(b))
		require.EqualError(t, err, "schema: snapshot: unsupported version 42")
	})

	t.Run("UnknownTable", func(t *testing.T) {
		b, err := msgpack.Marshal(&snapshot{
			Version: snapshotVersion,
			Tables: []snapshotTable{{
				Name:        "posts",
				Columns:     []snapshotColumn{{Name: "author_id", Type: TypeInt64}},
				ForeignKeys: []snapshotForeignKey{{Symbol: "posts_author", Columns: []string{"author_id"}, RefTable: "users", RefColumns: []string{"id"}}},
			}},
		})
		require.NoError(t, err)
		_, err = ReadSnapshot(bytes.NewReader(b))
		require.ErrorContains(t, err, `schema: snapshot: foreign key "posts_author": strata: table "users" not found`)
	})

	t.Run("UnknownColumn", func(t *testing.T) {
		b, err := msgpack.Marshal(&snapshot{
			Version: snapshotVersion,
			Tables:  []snapshotTable{{Name: "users", PrimaryKey: []string{"uid"}}},
		})
		require.NoError(t, err)
		_, err = ReadSnapshot(bytes.NewReader(b))
		require.EqualError(t, err, `schema: snapshot: table "users" has no column "uid"`)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ReadSnapshot(bytes.NewReader([]byte{0xc1}))
		require.ErrorContains(t, err, "schema: snapshot:")
	})
}
