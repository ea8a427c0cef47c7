package leaderboardhandlers

// Event topics consumed and produced by the leaderboard module.
const (
	// DailyUpdateRequestedV1 asks the engine to score a day.
	DailyUpdateRequestedV1 = "leaderboard.daily.requested.v1"
)

// DailyUpdateRequestedPayloadV1 is the payload of DailyUpdateRequestedV1.
// An empty Day means the previous UTC day.
type DailyUpdateRequestedPayloadV1 struct {
	Day      string `json:"day,omitempty"`
	RoomCode string `json:"room_code,omitempty"`
}
