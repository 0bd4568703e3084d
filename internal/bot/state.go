package bot

import "time"

// State collects what one account run achieved
type State struct {
	StartedAt  time.Time
	FinishedAt time.Time

	// Profile at login
	FullName string
	Balance  float64
	GodPower int
	ClanID   int

	Gacha    GachaSummary
	Breeding BreedingSummary
	Missions MissionSummary
	Rewards  RewardSummary
}

// Duration returns how long the run took
func (s *State) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
