package monitor

import "time"

type Status struct {
	Backend   string    `json:"backend"`
	Store     bool      `json:"store"`
	LastCheck time.Time `json:"last_check"`
}
