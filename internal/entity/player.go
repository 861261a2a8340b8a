package entity

type Player struct {
	ID       string `json:"id"`
	Mark     string `json:"mark,omitempty"`
	RoomCode string `json:"room_code,omitempty"`
}

// PlayerStats - lifetime results, kept per player in redis.
type PlayerStats struct {
	Wins   int64 `json:"wins"`
	Losses int64 `json:"losses"`
	Draws  int64 `json:"draws"`
}
