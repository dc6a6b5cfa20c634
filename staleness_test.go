package mercury

import "testing"

func TestShouldUpdate(t *testing.T) {
	cases := []struct {
		name string
		cell *Cell[string]
		want bool
	}{
		{"absent", nil, true},
		{"pending and invalidated", &Cell[string]{Pending: true, Invalidated: true}, false},
		{"pending", &Cell[string]{Pending: true}, false},
		{"invalidated", &Cell[string]{Invalidated: true}, true},
		{"fresh", &Cell[string]{Data: "x", Loaded: true}, false},
		{"failed but not invalidated", &Cell[string]{Err: ErrRejected}, false},
	}
	for _, tc := range cases {
		if got := ShouldUpdate(tc.cell); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}
