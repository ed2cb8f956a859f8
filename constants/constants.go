package constants

import "time"

// Lifecycle thresholds. A job is finished once it has collected MaxSuccess
// successful rate fetches and buried once it has failed MaxFail times.
const (
	MaxSuccess = 10
	MaxFail    = 3
)

// Requeue delays applied after a work cycle.
const (
	DelaySuccess = 60 * time.Second
	DelayFail    = 3 * time.Second
)

// MaxTries is the number of additional attempts made for a failed queue
// mutation or rate save before the failure is reported as permanent.
const MaxTries = 5

// Beanstalkd put and bury parameters.
const (
	SeedPriority    uint32 = 1
	RequeuePriority uint32 = 10
	BuryPriority    uint32 = 1

	JobTTR = 10 * time.Second
)

// Postgres advisory lock ids.
const (
	MigrationLock = iota + 4100
	SeedLock
)
