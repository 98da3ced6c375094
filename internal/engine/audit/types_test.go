package audit

import (
	"fmt"
	"sync"
	"testing"

	"uncheckedscan/internal/engine/parser"
)

func TestCounterpart(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"fetch_unchecked", "fetch"},
		{"get_unchecked_mut", "get_mut"},
		{"unchecked_get_unchecked", "unchecked_get"},
		{"a_unchecked_b_unchecked", "a_b"},
		{"_unchecked", ""},
	}
	for _, tc := range cases {
		if got := Counterpart(tc.name, "_unchecked"); got != tc.want {
			t.Errorf("Counterpart(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestVisit(t *testing.T) {
	file := &parser.File{
		Path: "lib.rs",
		Declarations: []parser.Declaration{
			{Name: "get_unchecked", Kind: parser.KindFunction},
			{Name: "get_unchecked", Kind: parser.KindMethod},
			{Name: "Get_Unchecked"},
			{Name: "get"},
			{Name: "set_unchecked", Kind: parser.KindMethod},
		},
	}

	got := Visit(file, "_unchecked")
	want := []MarkedEntry{{Path: "lib.rs", Name: "get_unchecked"}, {Path: "lib.rs", Name: "set_unchecked"}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestMarkerSet_ConcurrentAdd(t *testing.T) {
	set := NewMarkerSet()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				set.Add(MarkedEntry{Path: fmt.Sprintf("f%d.rs", i%10), Name: "x_unchecked"})
			}
		}()
	}
	wg.Wait()

	if set.Len() != 10 {
		t.Fatalf("expected 10 unique entries, got %d", set.Len())
	}
	entries := set.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Path >= entries[i].Path {
			t.Fatalf("entries not sorted: %v", entries)
		}
	}
}

func TestMarkerSet_AddReportsNew(t *testing.T) {
	set := NewMarkerSet()
	e := MarkedEntry{Path: "a.rs", Name: "x_unchecked"}
	if n := set.Add(e, e); n != 1 {
		t.Fatalf("expected 1 new entry, got %d", n)
	}
	if n := set.Add(e); n != 0 {
		t.Fatalf("expected no new entries, got %d", n)
	}
}

func TestResultSet_Sorted(t *testing.T) {
	rs := NewResultSet()
	rs.Add(ResolutionResult{Path: "b.rs", Name: "a_unchecked"})
	rs.Add(ResolutionResult{Path: "a.rs", Name: "z_unchecked", Counterpart: "z", Found: true})
	rs.Add(ResolutionResult{Path: "a.rs", Name: "m_unchecked"})
	rs.Add(ResolutionResult{Path: "a.rs", Name: "m_unchecked"})

	got := rs.Sorted()
	if rs.Len() != 3 || len(got) != 3 {
		t.Fatalf("expected 3 unique results, got %d", len(got))
	}
	order := []string{"a.rs/m_unchecked", "a.rs/z_unchecked", "b.rs/a_unchecked"}
	for i, r := range got {
		if r.Path+"/"+r.Name != order[i] {
			t.Errorf("position %d: expected %s, got %s/%s", i, order[i], r.Path, r.Name)
		}
	}
}
