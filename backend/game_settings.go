package main

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameSettings struct {
	RedType  PlayerType `json:"-"`
	BlueType PlayerType `json:"-"`
	RedSeed  int64      `json:"red_seed"`
	BlueSeed int64      `json:"blue_seed"`
	// Blocks lists squares such as "c3"; each is mirrored on both axes.
	Blocks []string `json:"blocks"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		RedType:  PlayerHuman,
		BlueType: PlayerAI,
		RedSeed:  1,
		BlueSeed: 2,
	}
}
