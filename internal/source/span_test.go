package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{1, 2, 4}, Span{1, 8, 10}, Span{1, 2, 10}},
		{"nested", Span{1, 0, 10}, Span{1, 3, 4}, Span{1, 0, 10}},
		{"other file ignored", Span{1, 2, 4}, Span{2, 0, 100}, Span{1, 2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanPoints(t *testing.T) {
	s := Span{File: 3, Start: 5, End: 9}
	if s.StartPoint() != (Span{3, 5, 5}) || s.EndPoint() != (Span{3, 9, 9}) {
		t.Fatalf("points of %v wrong", s)
	}
	if !s.Contains(5) || s.Contains(9) {
		t.Fatalf("Contains must be half-open")
	}
	if s.Len() != 4 || s.Empty() {
		t.Fatalf("Len/Empty wrong")
	}
}
