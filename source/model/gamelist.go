package model

// GameList is the result of a find_games query: the advertised lobbies plus
// the per-map counts reported by GetGameListV2Response (spec.md §4.6 /
// SPEC_FULL.md §3 supplement).
type GameList struct {
	Games []*Game

	SkeldCount int
	MiraHQCount int
	PolusCount  int
}

// NewGameList builds a GameList from decoded listings and map counts.
func NewGameList(games []*Game, skeldCount, mirahqCount, polusCount int) *GameList {
	return &GameList{
		Games:       games,
		SkeldCount:  skeldCount,
		MiraHQCount: mirahqCount,
		PolusCount:  polusCount,
	}
}

// Len returns the number of listed lobbies.
func (l *GameList) Len() int {
	return len(l.Games)
}

// ByCode finds a listed lobby by its numeric lobby code.
func (l *GameList) ByCode(code uint32) (*Game, bool) {
	for _, g := range l.Games {
		if g.Code == code {
			return g, true
		}
	}
	return nil, false
}
