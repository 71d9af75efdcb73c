package enums

type MatchStatus string

const (
	MatchActive    MatchStatus = "active"
	MatchUnmatched MatchStatus = "unmatched"
)
