package notes

import (
	"testing"
	"time"

	"notegate/internal/adapters/evernote"
)

func TestCacheIDIsTagOrderInsensitive(t *testing.T) {
	a := CacheID(SearchInput{Query: "boat", Tags: []string{"repair", "urgent"}, MaxResults: 20})
	b := CacheID(SearchInput{Query: "boat", Tags: []string{"urgent", "repair"}, MaxResults: 20})
	if a != b {
		t.Fatalf("tag order changed the identifier: %s vs %s", a, b)
	}
}

func TestCacheIDDependsOnPaging(t *testing.T) {
	base := SearchInput{Query: "boat", MaxResults: 20}
	next := base
	next.Offset = 20
	if CacheID(base) == CacheID(next) {
		t.Fatalf("different offsets must not share an identifier")
	}
	bigger := base
	bigger.MaxResults = 50
	if CacheID(base) == CacheID(bigger) {
		t.Fatalf("different page sizes must not share an identifier")
	}
}

func TestCacheIDIsStable(t *testing.T) {
	in := SearchInput{Query: "boat", NotebookName: "Projects", MaxResults: 20}
	if CacheID(in) != CacheID(in) {
		t.Fatalf("identifier not deterministic")
	}
	if got := len(CacheID(in)); got != 64 {
		t.Fatalf("identifier length = %d, want 64 hex chars", got)
	}
}

func TestCachePutGet(t *testing.T) {
	c := NewCache(time.Hour)
	res := evernote.SearchResult{TotalNotes: 2, Notes: []evernote.NoteMetadata{{GUID: "n-1"}}}
	e := c.Put("id-1", `boat tag:"repair"`, res)
	if e.ExpiresAt.Sub(e.CreatedAt) != time.Hour {
		t.Fatalf("TTL not applied: %+v", e)
	}

	got, ok := c.Get("id-1")
	if !ok || got.Result.TotalNotes != 2 || got.Query != `boat tag:"repair"` {
		t.Fatalf("Get: %+v ok=%v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("unknown id must miss")
	}
}

func TestCacheExpiryIsLazy(t *testing.T) {
	c := NewCache(time.Hour)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("id-1", "q", evernote.SearchResult{})
	now = now.Add(time.Hour + time.Second)

	if _, ok := c.Get("id-1"); ok {
		t.Fatalf("expired entry served")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not dropped on read")
	}
}

func TestCacheSweep(t *testing.T) {
	c := NewCache(time.Hour)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("old", "q1", evernote.SearchResult{})
	now = now.Add(30 * time.Minute)
	c.Put("fresh", "q2", evernote.SearchResult{})
	now = now.Add(45 * time.Minute)

	if dropped := c.Sweep(); dropped != 1 {
		t.Fatalf("Sweep dropped %d, want 1", dropped)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatalf("fresh entry swept")
	}
}
