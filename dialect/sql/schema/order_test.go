package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/graph"
)

// fixture holds three tables with a cycle between users and teams, a self
// reference on users, and posts hanging off users.
type fixture struct {
	users, teams, posts *Table
	// tables in declaration order.
	tables []*Table
}

func newFixture() *fixture {
	var (
		usersColumns = []*Column{
			{Name: "id", Type: TypeInt64, Increment: true},
			{Name: "name", Type: TypeString},
			{Name: "team_id", Type: TypeInt64, Nullable: true},
			{Name: "manager_id", Type: TypeInt64, Nullable: true},
		}
		teamsColumns = []*Column{
			{Name: "id", Type: TypeInt64, Increment: true},
			{Name: "name", Type: TypeString, Unique: true},
			{Name: "owner_id", Type: TypeInt64},
		}
		postsColumns = []*Column{
			{Name: "id", Type: TypeInt64, Increment: true},
			{Name: "title", Type: TypeString, Size: 100},
			{Name: "author_id", Type: TypeInt64},
		}
		f = &fixture{
			users: &Table{Name: "users", Columns: usersColumns, PrimaryKey: usersColumns[:1]},
			teams: &Table{Name: "teams", Columns: teamsColumns, PrimaryKey: teamsColumns[:1]},
			posts: &Table{Name: "posts", Columns: postsColumns, PrimaryKey: postsColumns[:1]},
		}
	)
	f.users.AddForeignKey(&ForeignKey{
		Symbol:     "users_team_id_fkey",
		Columns:    usersColumns[2:3],
		RefTable:   f.teams,
		RefColumns: teamsColumns[:1],
		OnDelete:   SetNull,
	})
	f.users.AddForeignKey(&ForeignKey{
		Symbol:     "users_manager_id_fkey",
		Columns:    usersColumns[3:4],
		RefTable:   f.users,
		RefColumns: usersColumns[:1],
		OnDelete:   SetNull,
	})
	f.teams.AddForeignKey(&ForeignKey{
		Symbol:     "teams_owner_id_fkey",
		Columns:    teamsColumns[2:3],
		RefTable:   f.users,
		RefColumns: usersColumns[:1],
	})
	f.posts.AddForeignKey(&ForeignKey{
		Symbol:     "posts_author_id_fkey",
		Columns:    postsColumns[2:3],
		RefTable:   f.users,
		RefColumns: usersColumns[:1],
		OnDelete:   Cascade,
	})
	f.posts.AddIndex("posts_title", false, "title")
	f.tables = []*Table{f.posts, f.users, f.teams}
	return f
}

func tableNames(tables []*Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

func fkSymbols(fks []*ForeignKey) []string {
	symbols := make([]string, len(fks))
	for i, fk := range fks {
		symbols[i] = fk.Symbol
	}
	return symbols
}

func TestSortTables(t *testing.T) {
	t.Run("NoCycle", func(t *testing.T) {
		f := newFixture()
		order, err := SortTables([]*Table{f.posts, f.users})
		require.NoError(t, err)
		assert.Equal(t, []string{"users", "posts"}, tableNames(order.Tables))
		assert.Empty(t, order.Deferred, "self references are never deferred")
	})

	t.Run("ExternalReference", func(t *testing.T) {
		f := newFixture()
		order, err := SortTables([]*Table{f.posts})
		require.NoError(t, err)
		assert.Equal(t, []string{"posts"}, tableNames(order.Tables))
	})

	t.Run("SelfReferencesOnly", func(t *testing.T) {
		f := newFixture()
		_, err := SortTables(f.tables)
		require.Error(t, err)
		require.ErrorIs(t, err, graph.ErrCycleBreakFailed)

		var cerr *CycleError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, []string{"posts", "users", "teams"}, cerr.Tables)
		assert.EqualError(t, err, "schema: foreign keys between tables posts, users, teams: graph: unable to break cycle")

		var gerr *graph.CycleError
		require.True(t, errors.As(err, &gerr))
		assert.Len(t, gerr.Vertices, 3)
	})

	t.Run("BreakNullable", func(t *testing.T) {
		f := newFixture()
		order, err := SortTables(f.tables, WithBreaker(BreakNullable))
		require.NoError(t, err)
		assert.Equal(t, []string{"users", "posts", "teams"}, tableNames(order.Tables))
		assert.Equal(t, []string{"users_team_id_fkey"}, fkSymbols(order.Deferred))
		assert.True(t, order.IsDeferred(f.users.ForeignKeys[0]))
		assert.False(t, order.IsDeferred(f.users.ForeignKeys[1]))
	})

	t.Run("BreakAny", func(t *testing.T) {
		f := newFixture()
		order, err := SortTables(f.tables, WithBreaker(BreakAny))
		require.NoError(t, err)
		// posts is blocked by the cycle and is released first.
		assert.Equal(t, []string{"posts", "users", "teams"}, tableNames(order.Tables))
		assert.Equal(t, []string{"posts_author_id_fkey", "users_team_id_fkey"}, fkSymbols(order.Deferred))
	})

	t.Run("BreakAnyOnlyCycles", func(t *testing.T) {
		f := newFixture()
		order, err := SortTables(f.tables, WithBreaker(BreakAny), OnlyCycles())
		require.NoError(t, err)
		assert.Equal(t, []string{"users", "posts", "teams"}, tableNames(order.Tables))
		assert.Equal(t, []string{"users_team_id_fkey"}, fkSymbols(order.Deferred))
		assert.Equal(t, []string{"teams", "posts", "users"}, tableNames(order.ReverseOrder()))
	})

	t.Run("RequiredCycle", func(t *testing.T) {
		a := NewTable("a").AddPrimary(&Column{Name: "id", Type: TypeInt64}).AddColumn(&Column{Name: "b_id", Type: TypeInt64})
		b := NewTable("b").AddPrimary(&Column{Name: "id", Type: TypeInt64}).AddColumn(&Column{Name: "a_id", Type: TypeInt64})
		a.AddForeignKey(&ForeignKey{Columns: a.Columns[1:], RefTable: b, RefColumns: b.PrimaryKey})
		b.AddForeignKey(&ForeignKey{Columns: b.Columns[1:], RefTable: a, RefColumns: a.PrimaryKey})

		_, err := SortTables([]*Table{a, b}, WithBreaker(BreakNullable))
		require.ErrorIs(t, err, graph.ErrCycleBreakFailed)

		order, err := SortTables([]*Table{a, b}, WithBreaker(BreakAny))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, tableNames(order.Tables))
		assert.Len(t, order.Deferred, 1)
		assert.Same(t, a.ForeignKeys[0], order.Deferred[0])
	})

	t.Run("MissingTableBackReference", func(t *testing.T) {
		users := &Table{Name: "users", Columns: []*Column{{Name: "id", Type: TypeInt64}}}
		users.ForeignKeys = []*ForeignKey{{Columns: users.Columns, RefTable: users, RefColumns: users.Columns}}
		order, err := SortTables([]*Table{users})
		require.NoError(t, err)
		assert.Equal(t, []string{"users"}, tableNames(order.Tables))
		assert.Same(t, users, users.ForeignKeys[0].Table)
	})
}

func TestBatchTables(t *testing.T) {
	f := newFixture()
	batches, err := BatchTables(f.tables, WithBreaker(BreakNullable))
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"users"}, tableNames(batches[0]))
	assert.Equal(t, []string{"posts", "teams"}, tableNames(batches[1]))

	_, err = BatchTables(f.tables)
	require.ErrorIs(t, err, graph.ErrCycleBreakFailed)
}

func TestBreakers(t *testing.T) {
	f := newFixture()
	assert.True(t, BreakSelfReferences(f.users, f.users, f.users.ForeignKeys[1:]))
	assert.False(t, BreakSelfReferences(f.teams, f.users, f.users.ForeignKeys[:1]))

	assert.True(t, BreakNullable(f.teams, f.users, f.users.ForeignKeys[:1]))
	assert.False(t, BreakNullable(f.users, f.teams, f.teams.ForeignKeys))
	assert.True(t, BreakNullable(f.users, f.users, nil))

	assert.True(t, BreakAny(f.users, f.posts, f.posts.ForeignKeys))
}
