package domain

// Stats - local win/loss/draw counters
type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// GameResult - outcome of a finished game from the local player's view
type GameResult string

const (
	GameResultWin  GameResult = "WIN"
	GameResultLoss GameResult = "LOSS"
	GameResultDraw GameResult = "DRAW"
)

// Record adds one result to the counters.
func (s *Stats) Record(r GameResult) {
	switch r {
	case GameResultWin:
		s.Wins++
	case GameResultLoss:
		s.Losses++
	case GameResultDraw:
		s.Draws++
	}
}

// LocalGameRecord - entry of the local game history
type LocalGameRecord struct {
	GameID    string     `json:"gameId"`
	Opponent  string     `json:"opponent"`
	Result    GameResult `json:"result"`
	Timestamp int64      `json:"timestamp"`
}

// InferSymbol guesses the local player's symbol: X unless the game is PVP
// and someone else created it.
func InferSymbol(g GameState, localPlayerID string) Symbol {
	if g.Mode == GameModePVP && g.CreatedBy != nil && g.CreatedBy.PlayerID != localPlayerID {
		return SymbolO
	}
	return SymbolX
}

// ResultFor maps the declared winner onto the local player's result.
func ResultFor(winner string, mine Symbol) GameResult {
	switch {
	case winner == WinnerDraw:
		return GameResultDraw
	case winner == string(mine):
		return GameResultWin
	default:
		return GameResultLoss
	}
}
