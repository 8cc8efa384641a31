package main

import "github.com/brensch/snekstar/rules"

type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Frame is one tick of a game as the page draws it. Live frames and archived
// turns share this shape.
type Frame struct {
	GameID  string  `json:"game_id"`
	Turn    int32   `json:"turn"`
	Width   int32   `json:"width"`
	Height  int32   `json:"height"`
	Food    *Point  `json:"food"`
	Body    []Point `json:"body"`
	Score   int32   `json:"score"`
	Move    int32   `json:"move"`
	Outcome string  `json:"outcome,omitempty"`
}

type GameSummary struct {
	GameID     string `json:"game_id"`
	TurnCount  int32  `json:"turn_count"`
	Width      int32  `json:"width"`
	Height     int32  `json:"height"`
	Score      int32  `json:"score"`
	Result     string `json:"result"`
	Searches   int64  `json:"searches"`
	Source     string `json:"source"`
	SourceFile string `json:"file"`
}

type GamesResponse struct {
	Total int64         `json:"total"`
	Games []GameSummary `json:"games"`
}

// frameFromState builds a live frame. outcome is empty while the game runs.
func frameFromState(gameID string, s *rules.GameState, outcome string) Frame {
	f := Frame{
		GameID:  gameID,
		Turn:    int32(s.Turn),
		Width:   int32(s.Board.Width()),
		Height:  int32(s.Board.Height()),
		Body:    make([]Point, len(s.Snake.Body)),
		Score:   int32(s.Score),
		Move:    int32(s.Snake.Heading),
		Outcome: outcome,
	}
	if s.HasFood {
		f.Food = &Point{X: int32(s.Food.X), Y: int32(s.Food.Y)}
	}
	for i, p := range s.Snake.Body {
		f.Body[i] = Point{X: int32(p.X), Y: int32(p.Y)}
	}
	return f
}
