package monitor

import "time"

// Status is one connectivity observation. Stale means the realtime
// reconnection budget is exhausted: cached data may silently drift until the
// next full refresh.
type Status struct {
	Backend   bool      `json:"backend"`
	Realtime  bool      `json:"realtime"`
	Store     bool      `json:"store"`
	Stale     bool      `json:"stale"`
	LastCheck time.Time `json:"last_check"`
}
