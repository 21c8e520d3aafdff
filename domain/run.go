package domain

import "time"

// SimulationRun is the summary record of one offline log-generation run.
// The event log itself is stored alongside it in the run repository.
type SimulationRun struct {
	ID          string    `json:"id"`
	RandomSeed  int64     `json:"random_seed"`
	NumProducts int       `json:"num_products"`
	NumUsers    int       `json:"num_users"`
	NumEvents   int       `json:"num_events"`
	Displays    int       `json:"displays"`
	Clicks      int       `json:"clicks"`
	CTR         float64   `json:"ctr"`
	CreatedAt   time.Time `json:"created_at"`
}
