package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata"
)

func TestColumnType(t *testing.T) {
	for _, typ := range []ColumnType{TypeBool, TypeInt, TypeInt64, TypeFloat, TypeString, TypeText, TypeBytes, TypeTime, TypeUUID, TypeJSON} {
		parsed, err := ParseColumnType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
	parsed, err := ParseColumnType("INT64")
	require.NoError(t, err)
	assert.Equal(t, TypeInt64, parsed)

	_, err = ParseColumnType("invalid")
	require.EqualError(t, err, `schema: unknown column type "invalid"`)
	assert.Equal(t, "ColumnType(200)", ColumnType(200).String())
	assert.Equal(t, "TypeUUID", TypeUUID.ConstName())
	assert.Empty(t, TypeInvalid.ConstName())
	assert.Empty(t, ColumnType(200).ConstName())
	assert.True(t, TypeInt.Integer())
	assert.False(t, TypeFloat.Integer())
}

func TestReferenceOption_ConstName(t *testing.T) {
	assert.Equal(t, "SetNull", SetNull.ConstName())
	assert.Equal(t, "NoAction", NoAction.ConstName())
	assert.Empty(t, ReferenceOption("").ConstName())
}

func TestTable(t *testing.T) {
	users := NewTable("users").
		AddPrimary(&Column{Name: "id", Type: TypeInt64, Increment: true}).
		AddColumn(&Column{Name: "email", Type: TypeString}).
		AddIndex("users_email", true, "email", "missing")

	require.Len(t, users.Columns, 2)
	require.Len(t, users.PrimaryKey, 1)
	assert.True(t, users.HasColumn("email"))
	assert.False(t, users.HasColumn("name"))

	idx, ok := users.Index("users_email")
	require.True(t, ok)
	assert.Same(t, users.Columns[1], idx.Columns[0])
	assert.Equal(t, "missing", idx.Columns[1].Name)
	assert.False(t, users.HasColumn("missing"))

	fk := &ForeignKey{Columns: []*Column{{Name: "manager_id", Nullable: true}}, RefTable: users}
	assert.False(t, fk.SelfReference())
	users.AddForeignKey(fk)
	assert.True(t, fk.SelfReference())
	assert.True(t, fk.Nullable())
	assert.False(t, (&ForeignKey{}).Nullable())

	found, err := TableByName([]*Table{users}, "users")
	require.NoError(t, err)
	assert.Same(t, users, found)
	_, err = TableByName([]*Table{users}, "posts")
	assert.True(t, strata.IsNotFound(err))
}
