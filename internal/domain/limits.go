package domain

// Limits bounds a single session.
type Limits struct {
	MaxScrapLength int
	MaxTotalScraps int
	MaxPlayers     int
}

func DefaultLimits() Limits {
	return Limits{
		MaxScrapLength: 1000,
		MaxTotalScraps: 999,
		MaxPlayers:     99,
	}
}
