package gamification

// Rank is a named level bracket; MaxLevel 0 means unbounded.
type Rank struct {
	Name     string
	MinLevel int
	MaxLevel int
}

var ranks = [...]Rank{
	{Name: "Bronze", MinLevel: 1, MaxLevel: 3},
	{Name: "Silver", MinLevel: 4, MaxLevel: 6},
	{Name: "Gold", MinLevel: 7, MaxLevel: 9},
	{Name: "Platinum", MinLevel: 10},
}

// Ranks returns the bracket table
func Ranks() []Rank {
	out := make([]Rank, len(ranks))
	copy(out, ranks[:])
	return out
}

// RankFor maps a level to its rank name. Levels outside every bracket fall
// back to the first one.
func RankFor(level int) string {
	for _, r := range ranks {
		if level >= r.MinLevel && (r.MaxLevel == 0 || level <= r.MaxLevel) {
			return r.Name
		}
	}
	return ranks[0].Name
}
