package leaderboardqueue

// DailyUpdateJob scores one UTC day. An empty RoomCode covers every room.
type DailyUpdateJob struct {
	Day      string `json:"day"`
	RoomCode string `json:"room_code,omitempty"`
}

// Kind returns the job type identifier for River
func (DailyUpdateJob) Kind() string { return "leaderboard_daily_update" }

// QueueName is the dedicated River queue for leaderboard jobs.
const QueueName = "leaderboard"
