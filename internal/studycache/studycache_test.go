// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package studycache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

func TestPutGet(t *testing.T) {
	c := New(10)
	c.Put(types.Study{ID: "OSD-1", Title: "first"})
	c.Put(types.Study{ID: "OSD-1", Title: "second"})
	c.Put(types.Study{Title: "no id"})

	got, ok := c.Get("OSD-1")
	require.True(t, ok)
	assert.Equal(t, "second", got.Title)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Put(types.Study{ID: "a"})
	c.Put(types.Study{ID: "b"})
	_, _ = c.Get("a")
	c.Put(types.Study{ID: "c"})

	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
	assert.Equal(t, 2, c.Len())
}

func TestPutAllLastDuplicateWins(t *testing.T) {
	c := New(0)
	c.PutAll([]types.Study{{ID: "a", Title: "1"}, {ID: "b"}, {ID: "a", Title: "2"}})
	assert.Equal(t, 2, c.Len())
	got, _ := c.Get("a")
	assert.Equal(t, "2", got.Title)
}

func TestRecentNewestFirst(t *testing.T) {
	c := New(10)
	c.PutAll([]types.Study{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})
	_, _ = c.Get("a")

	ids := func(ss []types.Study) []string {
		out := make([]string, 0, len(ss))
		for _, s := range ss {
			out = append(out, s.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "d", "c"}, ids(c.Recent(3, "")))
	assert.Equal(t, []string{"a", "c", "b"}, ids(c.Recent(3, "d")))
	assert.Equal(t, []string{"a", "d", "c", "b"}, ids(c.Recent(10, "")), "recency untouched by Recent")
	assert.Empty(t, c.Recent(0, ""))
	assert.Empty(t, New(1).Recent(3, ""))
}

func TestConcurrentAccess(t *testing.T) {
	c := New(50)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("s-%d", i%60)
				c.Put(types.Study{ID: id, Title: fmt.Sprint(w)})
				c.Get(id)
			}
		}(w)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
