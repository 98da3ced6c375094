package audit

import (
	"fmt"
	"sync"
	"testing"

	"uncheckedscan/internal/engine/parser"
)

func TestDeclarationCache_GetPut(t *testing.T) {
	c := NewDeclarationCache(3)

	if _, ok := c.Get("a.rs"); ok {
		t.Fatal("expected miss on empty cache")
	}

	for _, p := range []string{"a.rs", "b.rs", "c.rs"} {
		c.Put(p, &parser.File{Path: p})
	}
	if c.Len() != 3 {
		t.Fatalf("expected len 3, got %d", c.Len())
	}
	f, ok := c.Get("b.rs")
	if !ok || f.Path != "b.rs" {
		t.Fatalf("expected hit for b.rs, got %v %v", f, ok)
	}
}

func TestDeclarationCache_EvictLRU(t *testing.T) {
	c := NewDeclarationCache(2)
	c.Put("a.rs", &parser.File{Path: "a.rs"})
	c.Put("b.rs", &parser.File{Path: "b.rs"})

	// Touch a.rs so b.rs becomes least recently used.
	c.Get("a.rs")
	c.Put("c.rs", &parser.File{Path: "c.rs"})

	if _, ok := c.Get("b.rs"); ok {
		t.Error("expected b.rs to be evicted")
	}
	if _, ok := c.Get("a.rs"); !ok {
		t.Error("expected a.rs to survive")
	}
	if c.Len() != 2 {
		t.Errorf("expected len 2, got %d", c.Len())
	}
}

func TestDeclarationCache_Replace(t *testing.T) {
	c := NewDeclarationCache(2)
	c.Put("a.rs", &parser.File{Path: "a.rs"})
	c.Put("a.rs", &parser.File{Path: "a.rs", Language: "rust"})

	f, _ := c.Get("a.rs")
	if f.Language != "rust" || c.Len() != 1 {
		t.Errorf("expected replacement in place, got %+v (len %d)", f, c.Len())
	}
}

func TestDeclarationCache_Disabled(t *testing.T) {
	c := NewDeclarationCache(0)
	if c != nil {
		t.Fatal("expected nil cache for zero capacity")
	}
	c.Put("a.rs", &parser.File{})
	if _, ok := c.Get("a.rs"); ok {
		t.Error("disabled cache must always miss")
	}
	if c.Len() != 0 {
		t.Error("disabled cache must be empty")
	}
}

func TestDeclarationCache_Concurrent(t *testing.T) {
	c := NewDeclarationCache(16)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				p := fmt.Sprintf("f%d.rs", (w*i)%32)
				if _, ok := c.Get(p); !ok {
					c.Put(p, &parser.File{Path: p})
				}
			}
		}(w)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Fatalf("cache exceeded capacity: %d", c.Len())
	}
}
