package enums

import "testing"

func TestParseSwipeDirection(t *testing.T) {
	cases := []struct {
		raw      string
		want     SwipeDirection
		ok       bool
		positive bool
	}{
		{"left", SwipeLeft, true, false},
		{"right", SwipeRight, true, true},
		{"super", SwipeSuper, true, true},
		{"RIGHT", SwipeRight, true, true},
		{" super ", SwipeSuper, true, true},
		{"up", "", false, false},
		{"", "", false, false},
	}

	for _, tc := range cases {
		got, ok := ParseSwipeDirection(tc.raw)
		if ok != tc.ok {
			t.Fatalf("%q: ok=%v want %v", tc.raw, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if got != tc.want {
			t.Fatalf("%q: got %q want %q", tc.raw, got, tc.want)
		}
		if got.Positive() != tc.positive {
			t.Fatalf("%q: positive=%v want %v", tc.raw, got.Positive(), tc.positive)
		}
	}
}
