package memory

import (
	"testing"

	"codeberg.org/miketth/hyprkeymap/pkg/hyprkeymap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore(3)

	for i := uint32(0); i < 5; i++ {
		require.NoError(t, s.Record(hyprkeymap.JournalEntry{Keyboard: "kbd", Group: i}))
	}

	all, err := s.Recent(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint32{4, 3, 2}, []uint32{all[0].Group, all[1].Group, all[2].Group})

	two, err := s.Recent(2)
	require.NoError(t, err)
	assert.Equal(t, all[:2], two)
}

func TestStoreEmpty(t *testing.T) {
	entries, err := NewStore(0).Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
