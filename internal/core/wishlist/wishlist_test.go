package wishlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewList(t *testing.T) {
	l := NewList([]Entry{
		{ProductID: "a", Name: "first"},
		{ProductID: ""},
		{ProductID: "b"},
		{ProductID: "a", Name: "second"},
	})

	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Contains("a"))
	assert.True(t, l.Contains("b"))
	assert.False(t, l.Contains(""))
	assert.Equal(t, "first", l.Entries()[0].Name)
}

func TestList_ZeroValue(t *testing.T) {
	var l List
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("a"))
	assert.Empty(t, l.Entries())
}

func TestList_EntriesReturnsCopy(t *testing.T) {
	l := NewList([]Entry{{ProductID: "a", Name: "lamp"}})

	entries := l.Entries()
	entries[0].Name = "changed"

	assert.Equal(t, "lamp", l.Entries()[0].Name)
}
