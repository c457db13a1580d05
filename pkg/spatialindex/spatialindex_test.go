package spatialindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInsertAndQueryBoxFindsOverlap(t *testing.T) {
	idx := New()
	idx.Insert("a", Box{7.0, 45.0, 7.1, 45.1}, Metadata{OwnerID: "decl-a"})
	idx.Insert("b", Box{10.0, 50.0, 10.1, 50.1}, Metadata{OwnerID: "decl-b"})

	hits := idx.QueryBox(Box{7.05, 45.05, 7.2, 45.2})
	assert.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
}

func TestQueryBoxReturnsNoneWhenDisjoint(t *testing.T) {
	idx := New()
	idx.Insert("a", Box{0, 0, 1, 1}, Metadata{})

	hits := idx.QueryBox(Box{10, 10, 11, 11})
	assert.Empty(t, hits)
}

func TestDeleteRemovesEntry(t *testing.T) {
	idx := New()
	box := Box{0, 0, 1, 1}
	idx.Insert("a", box, Metadata{})
	idx.Delete("a", box)

	hits := idx.QueryBox(box)
	assert.Empty(t, hits)
}

func TestClearEmptiesIndex(t *testing.T) {
	idx := New()
	idx.Insert("a", Box{0, 0, 1, 1}, Metadata{})
	idx.Clear()

	hits := idx.QueryBox(Box{0, 0, 1, 1})
	assert.Empty(t, hits)
}

func TestInsertManyEntriesTriggersSplitAndStillQueries(t *testing.T) {
	idx := New()
	for i := 0; i < 50; i++ {
		offset := float64(i)
		idx.Insert(
			"flight",
			Box{offset, offset, offset + 0.5, offset + 0.5},
			Metadata{OwnerID: "decl", StartTime: time.Now()},
		)
	}

	hits := idx.QueryBox(Box{25, 25, 25.4, 25.4})
	assert.NotEmpty(t, hits)
}

func TestBoxIntersectsTouchingEdges(t *testing.T) {
	a := Box{0, 0, 1, 1}
	b := Box{1, 1, 2, 2}
	assert.True(t, a.Intersects(b))
}
