package db

import "time"

type Status struct {
	Location          string    `json:"location"`
	Mirror            string    `json:"mirror"`
	LastUpdate        time.Time `json:"lastUpdate"`
	Records           int       `json:"records"`
	Validators        int       `json:"validators"`
	CompactionCounter int       `json:"compactionCounter"`
	Size              int64     `json:"size"`
	Err               error     `json:"error"`
}

func (s Status) Status() string {
	if s.Err != nil {
		return "invalid"
	}
	return "valid"
}
