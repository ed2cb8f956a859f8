package worker

import (
	"time"

	"github.com/RezaEskandarii/fxworker/constants"
	"github.com/RezaEskandarii/fxworker/internal/state"
	"github.com/RezaEskandarii/fxworker/types"
)

// Decide returns where a freshly reserved job goes. The success threshold is
// checked first, so a job that meets both thresholds is finished.
func Decide(job types.Job) state.JobState {
	switch {
	case job.Success >= constants.MaxSuccess:
		return state.StateFinished
	case job.Fail >= constants.MaxFail:
		return state.StateBuried
	default:
		return state.StateRequeued
	}
}

// Advance applies the outcome of one work step to job. Exactly one counter
// moves. The delay drops to zero once a threshold is reached so the next
// reservation settles the job right away.
func Advance(job types.Job, fetched bool) types.Job {
	if fetched {
		job.Success++
		job.Delay = constants.DelaySuccess
	} else {
		job.Fail++
		job.Delay = constants.DelayFail
	}

	if job.Success >= constants.MaxSuccess || job.Fail >= constants.MaxFail {
		job.Delay = 0
	}
	return job
}

func delaySeconds(d time.Duration) int {
	return int(d / time.Second)
}
