package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero uses default", limit: 0, want: DefaultLimit},
		{name: "negative uses default", limit: -5, want: DefaultLimit},
		{name: "within range", limit: 40, want: 40},
		{name: "above max clamps", limit: 500, want: MaxLimit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.limit); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	p := Params{Limit: -1, Offset: -10}.Normalize()
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Fatalf("unexpected normalized params: %+v", p)
	}
}

func TestHasMore(t *testing.T) {
	if !HasMore(0, 25, 26) {
		t.Fatal("expected more rows past the first page")
	}
	if HasMore(25, 1, 26) {
		t.Fatal("expected final page to report no more rows")
	}
	if HasMore(0, 0, 0) {
		t.Fatal("empty result should not report more rows")
	}
}
