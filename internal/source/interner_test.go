package source

import (
	"sync"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	in := NewInterner()
	a := in.Intern("Foo")
	b := in.Intern("Foo")
	if a != b || a == NoStringID {
		t.Fatalf("Intern not stable: %d vs %d", a, b)
	}
	if s, ok := in.Lookup(a); !ok || s != "Foo" {
		t.Fatalf("Lookup = %q,%v", s, ok)
	}
	if _, ok := in.Lookup(StringID(999)); ok {
		t.Fatalf("Lookup of unknown id must fail")
	}
	if in.Len() != 2 {
		t.Fatalf("Len = %d, want 2", in.Len())
	}
}

func TestInternerConcurrent(t *testing.T) {
	in := NewInterner()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, s := range []string{"a", "b", "c", "a"} {
				in.Intern(s)
			}
		}()
	}
	wg.Wait()
	if in.Len() != 4 {
		t.Fatalf("Len = %d, want 4", in.Len())
	}
}
