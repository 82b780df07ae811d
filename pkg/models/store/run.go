package store

import "time"

type Run struct {
	ID            string
	Kind          string
	Status        string
	Mode          string
	StartedAt     time.Time
	FinishedAt    time.Time
	Scanned       int
	NonCompliant  int
	Deleted       int
	InGracePeriod int
	ErrorCount    int
	Payload       string
}
