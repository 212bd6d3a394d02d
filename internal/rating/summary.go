package rating

import (
	"fmt"
	"sort"
)

// HeadToHead is the record against one specific opponent.
type HeadToHead struct {
	Opponent string `json:"opponent"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// Record renders the tally as "W-L".
func (h HeadToHead) Record() string {
	return fmt.Sprintf("%d-%d", h.Wins, h.Losses)
}

// PlayerSummary is the per-player aggregate row of the final bundle.
type PlayerSummary struct {
	Player      string       `json:"player"`
	Wins        int          `json:"wins"`
	Losses      int          `json:"losses"`
	TotalSets   int          `json:"total_sets"`
	PositiveH2H []HeadToHead `json:"positive_h2h"`
	EvenH2H     []HeadToHead `json:"even_h2h"`
	NegativeH2H []HeadToHead `json:"negative_h2h"`
	WonAgainst  []string     `json:"won_against"`
	LostAgainst []string     `json:"lost_against"`
	Attendance  int          `json:"attendance"`

	// LossToAttendance is losses/attendance, nil when attendance is zero.
	LossToAttendance *float64 `json:"loss_to_attendance"`

	Rating float64 `json:"rating"`
}

// playerAgg is the accumulator for one player. Opponent order is tracked so
// head-to-head buckets come out in chronological first-encounter order.
type playerAgg struct {
	wins, losses int
	h2h          map[string]*HeadToHead
	opponents    []string
	wonAgainst   []string
	lostAgainst  []string
}

// Engine aggregates decided sets in the order they are recorded. Pure
// accumulator state; no suspension, no I/O.
type Engine struct {
	table Table
	stats map[string]*playerAgg
	order []string // first-appearance order of players with a decided set
}

// NewEngine creates an empty engine with a fresh rating table.
func NewEngine() *Engine {
	return &Engine{
		table: make(Table),
		stats: make(map[string]*playerAgg),
	}
}

// Table exposes the rating table (seeded players plus applied updates).
func (e *Engine) Table() Table { return e.table }

// Seed registers players at the initial rating. See Table.Seed.
func (e *Engine) Seed(players []string) { e.table.Seed(players) }

// Record applies one set with two known scores. Equal scores are undecided
// and contribute nothing — the original fell through to a player-1 loss
// here, which was never exercised and is rejected deliberately.
func (e *Engine) Record(p1, p2 string, s1, s2 int) {
	if s1 == s2 {
		return
	}
	winner, loser := p1, p2
	if s2 > s1 {
		winner, loser = p2, p1
	}

	e.table.Update(p1, p2, s1 > s2)

	w, l := e.agg(winner), e.agg(loser)
	w.wins++
	l.losses++
	w.tallyOpponent(loser).Wins++
	l.tallyOpponent(winner).Losses++
	w.wonAgainst = append(w.wonAgainst, loser)
	l.lostAgainst = append(l.lostAgainst, winner)
}

func (e *Engine) agg(player string) *playerAgg {
	a, ok := e.stats[player]
	if !ok {
		a = &playerAgg{h2h: make(map[string]*HeadToHead)}
		e.stats[player] = a
		e.order = append(e.order, player)
	}
	return a
}

func (a *playerAgg) tallyOpponent(opponent string) *HeadToHead {
	h, ok := a.h2h[opponent]
	if !ok {
		h = &HeadToHead{Opponent: opponent}
		a.h2h[opponent] = h
		a.opponents = append(a.opponents, opponent)
	}
	return h
}

// Summaries assembles one row per player with at least one decided set,
// sorted by rating descending, ties broken by total decided sets
// descending. Attendance maps player name to distinct-event count.
func (e *Engine) Summaries(attendance map[string]int) []PlayerSummary {
	rows := make([]PlayerSummary, 0, len(e.order))
	for _, player := range e.order {
		a := e.stats[player]
		row := PlayerSummary{
			Player:      player,
			Wins:        a.wins,
			Losses:      a.losses,
			TotalSets:   a.wins + a.losses,
			WonAgainst:  a.wonAgainst,
			LostAgainst: a.lostAgainst,
			Attendance:  attendance[player],
		}

		for _, opp := range a.opponents {
			h := *a.h2h[opp]
			switch {
			case h.Wins > h.Losses:
				row.PositiveH2H = append(row.PositiveH2H, h)
			case h.Wins == h.Losses && h.Wins > 0:
				row.EvenH2H = append(row.EvenH2H, h)
			default:
				row.NegativeH2H = append(row.NegativeH2H, h)
			}
		}

		if row.Attendance > 0 {
			ratio := float64(row.Losses) / float64(row.Attendance)
			row.LossToAttendance = &ratio
		}

		// Fallback 0.0 for a player absent from the table should never
		// trigger (Record seeds both sides), but the lookup stays guarded.
		if r, ok := e.table[player]; ok {
			row.Rating = r
		}

		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Rating != rows[j].Rating {
			return rows[i].Rating > rows[j].Rating
		}
		return rows[i].TotalSets > rows[j].TotalSets
	})
	return rows
}

// Attendance counts, per player, the number of distinct events whose player
// set contains them.
func Attendance(playersPerEvent [][]string) map[string]int {
	counts := make(map[string]int)
	for _, players := range playersPerEvent {
		for _, p := range players {
			counts[p]++
		}
	}
	return counts
}
