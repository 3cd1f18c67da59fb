package domain

import "testing"

func TestDecodeGameList(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantIDs []string
	}{
		{"wrapped", `{"games":[{"gameId":"g1"},{"gameId":"g2"}]}`, []string{"g1", "g2"}},
		{"bare array", `[{"gameId":"g3"}]`, []string{"g3"}},
		{"empty object", `{}`, nil},
		{"null", `null`, nil},
		{"games not a list", `{"games":"nope"}`, nil},
		{"empty wrapped", `{"games":[]}`, nil},
	}

	for _, tc := range cases {
		got, err := DecodeGameList([]byte(tc.body))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got == nil {
			t.Fatalf("%s: list must never be nil", tc.name)
		}
		if len(got) != len(tc.wantIDs) {
			t.Fatalf("%s: got %d games; want %d", tc.name, len(got), len(tc.wantIDs))
		}
		for i, id := range tc.wantIDs {
			if got[i].GameID != id {
				t.Fatalf("%s: game %d = %s; want %s", tc.name, i, got[i].GameID, id)
			}
		}
	}
}

func TestDecodeGameListInvalid(t *testing.T) {
	if _, err := DecodeGameList([]byte(`{`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestDecodeGameBoard(t *testing.T) {
	g, err := DecodeGame([]byte(`{"gameId":"g1","mode":"PVP","board":[["X","",""],["","O",""],[null,"","X"]],"status":"IN_PROGRESS","currentTurn":"O"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Board[0][0] != "X" || g.Board[1][1] != "O" || g.Board[2][2] != "X" || g.Board[2][0] != "" {
		t.Fatalf("unexpected board: %v", g.Board)
	}
	if g.IsFinished() {
		t.Fatalf("game in progress reported as finished")
	}
}

func TestGameUpdateApplyPreservesAbsentFields(t *testing.T) {
	base := GameState{
		GameID:      "g1",
		Mode:        GameModePVP,
		CurrentTurn: "X",
		Status:      GameStatusInProgress,
		CreatedBy:   &CreatedBy{PlayerID: "p1", Name: "Alice"},
	}
	base.Board[0][0] = "X"

	status := GameStatusFinished
	winner := "X"
	got := GameUpdate{Status: &status, Winner: &winner}.Apply(base)

	if got.Status != GameStatusFinished || got.Winner != "X" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.GameID != "g1" || got.Mode != GameModePVP || got.CurrentTurn != "X" || got.Board[0][0] != "X" {
		t.Fatalf("absent fields changed: %+v", got)
	}
	if got.CreatedBy == nil || got.CreatedBy.PlayerID != "p1" {
		t.Fatalf("createdBy lost: %+v", got.CreatedBy)
	}
}

func TestParseGameMode(t *testing.T) {
	for in, want := range map[string]GameMode{"": GameModePVP, "PVP": GameModePVP, "pvc": GameModePVC} {
		got, err := ParseGameMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseGameMode(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseGameMode("ranked"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
