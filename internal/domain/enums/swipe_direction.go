package enums

import "strings"

type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
	SwipeSuper SwipeDirection = "super"
)

// ParseSwipeDirection normalizes user input to a known direction.
func ParseSwipeDirection(input string) (SwipeDirection, bool) {
	switch SwipeDirection(strings.ToLower(strings.TrimSpace(input))) {
	case SwipeLeft:
		return SwipeLeft, true
	case SwipeRight:
		return SwipeRight, true
	case SwipeSuper:
		return SwipeSuper, true
	default:
		return "", false
	}
}

// Positive reports whether the direction expresses interest. Only positive
// directions can ever produce a match.
func (d SwipeDirection) Positive() bool {
	return d == SwipeRight || d == SwipeSuper
}
