// Package rating computes pairwise Elo ratings and win/loss statistics over
// an ordered sequence of decided sets.
package rating

import "math"

const (
	// InitialRating seeds every player before their first update.
	InitialRating = 1500.0

	// KFactor scales each rating update.
	KFactor = 30.0
)

// Table maps player display names to ratings. Mutated incrementally by a
// single goroutine; never read concurrently with a write.
type Table map[string]float64

// Get returns a player's rating, defaulting to InitialRating for players
// not yet seen.
func (t Table) Get(name string) float64 {
	if r, ok := t[name]; ok {
		return r
	}
	return InitialRating
}

// Seed registers players at the initial rating without touching players
// already present. Every player who appears in at least one resolvable set
// belongs in the table even if none of their sets were decided.
func (t Table) Seed(players []string) {
	for _, p := range players {
		if _, ok := t[p]; !ok {
			t[p] = InitialRating
		}
	}
}

// Update applies one decided set in the standard pairwise logistic form:
//
//	expected1 = 1 / (1 + 10^((r2-r1)/400))
//	r1 += K * (outcome1 - expected1)
//
// with the complementary update for player 2. Order of application matters;
// callers must feed sets in encounter order for deterministic ratings.
func (t Table) Update(p1, p2 string, p1Won bool) {
	r1, r2 := t.Get(p1), t.Get(p2)

	expected1 := 1.0 / (1.0 + math.Pow(10, (r2-r1)/400.0))
	outcome1 := 0.0
	if p1Won {
		outcome1 = 1.0
	}

	t[p1] = r1 + KFactor*(outcome1-expected1)
	t[p2] = r2 + KFactor*((1.0-outcome1)-(1.0-expected1))
}
