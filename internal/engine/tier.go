package engine

import "fmt"

// Tier is a named difficulty bundle. Each tier maps to a Skill Level
// value sent to the engine and the depth used for every search.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierProfessional Tier = "professional"
	TierTopStar      Tier = "top_star"
)

type tierSettings struct {
	skill int
	depth int
}

var tiers = map[Tier]tierSettings{
	TierBeginner:     {skill: 3, depth: 5},
	TierIntermediate: {skill: 10, depth: 10},
	TierProfessional: {skill: 15, depth: 15},
	TierTopStar:      {skill: 20, depth: 20},
}

// settingsFor rejects unknown tiers up front, before anything is sent
// to the engine process.
func settingsFor(tier Tier) (tierSettings, error) {
	s, ok := tiers[tier]
	if !ok {
		return tierSettings{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return s, nil
}
