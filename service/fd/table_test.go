package fd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var table Table
	assert.Equal(t, 0, table.Count())

	console := Open("console", Read|Write)
	fd, err := table.Insert(console)
	require.NoError(t, err)
	assert.Equal(t, 0, fd)
	fd, err = table.Insert(console.Dup())
	require.NoError(t, err)
	assert.Equal(t, 1, fd)
	assert.Equal(t, 2, table.Count())
	assert.Equal(t, 2, console.Refs())

	child := table.Dup()
	assert.Equal(t, 2, child.Count())
	assert.Equal(t, 4, console.Refs())

	f, err := table.Remove(0)
	require.NoError(t, err)
	assert.False(t, f.Close())
	fd, err = table.Insert(Open("README", Read))
	require.NoError(t, err)
	assert.Equal(t, 0, fd, "lowest free slot is reused")

	_, err = table.Remove(NOFILE)
	assert.True(t, errors.Is(err, ErrBadDescriptor))
	_, err = table.Remove(5)
	assert.True(t, errors.Is(err, ErrBadDescriptor))

	table.CloseAll()
	child.CloseAll()
	assert.Equal(t, 0, table.Count())
	assert.Equal(t, 0, console.Refs())
	assert.Panics(t, func() { console.Close() })
}

func TestTable_Full(t *testing.T) {
	var table Table
	for i := 0; i < NOFILE; i++ {
		_, err := table.Insert(Open("f", Read))
		require.NoError(t, err)
	}
	_, err := table.Insert(Open("f", Read))
	assert.True(t, errors.Is(err, ErrTooMany))
}

func TestInode(t *testing.T) {
	root := NewInode("/")
	cwd := root.Dup()
	assert.Equal(t, 2, root.Refs())
	cwd.Put()
	root.Put()
	assert.Equal(t, 0, root.Refs())
	assert.Panics(t, root.Put)
	assert.Equal(t, "/", root.Path())
}
