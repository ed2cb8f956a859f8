package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Job is one currency conversion task in flight.
//
// Handle is the queue's own id for the current entry. It is not stable: every
// requeue deletes the entry and inserts a new one, so anything that tracks a
// job across cycles must key on TaskID.
type Job struct {
	Handle    uint64
	TaskID    int64
	From      string
	To        string
	Success   int
	Fail      int
	Delay     time.Duration
	RecordRef string
}

// Payload returns the wire form of the job as carried in the queue body.
func (j Job) Payload() JobPayload {
	success, fail := Count(j.Success), Count(j.Fail)
	return JobPayload{
		TaskID:  Count(j.TaskID),
		From:    j.From,
		To:      j.To,
		Success: &success,
		Fail:    &fail,
	}
}

// JobPayload is the JSON body of a queue entry. Success and Fail are omitted
// by producers on first insertion and default to zero.
type JobPayload struct {
	TaskID  Count  `json:"task_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Success *Count `json:"success,omitempty"`
	Fail    *Count `json:"fail,omitempty"`
}

// DecodeJob builds a Job from a reserved queue entry.
func DecodeJob(handle uint64, body []byte) (Job, error) {
	var p JobPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Job{}, fmt.Errorf("decode job %d payload: %w", handle, err)
	}
	if p.From == "" || p.To == "" {
		return Job{}, fmt.Errorf("decode job %d payload: missing currency code", handle)
	}
	job := Job{
		Handle: handle,
		TaskID: int64(p.TaskID),
		From:   p.From,
		To:     p.To,
	}
	if p.Success != nil {
		job.Success = int(*p.Success)
	}
	if p.Fail != nil {
		job.Fail = int(*p.Fail)
	}
	if job.Success < 0 || job.Fail < 0 {
		return Job{}, fmt.Errorf("decode job %d payload: negative counter", handle)
	}
	return job, nil
}

// EncodeJob renders the queue body for a requeue of job.
func EncodeJob(job Job) ([]byte, error) {
	return json.Marshal(job.Payload())
}

// Count is an integer that also accepts a quoted decimal on decode, the way
// older producers wrote counters.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("invalid count %q", data)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return fmt.Errorf("count %q out of range", data)
		}
		n = int64(f)
	}
	*c = Count(n)
	return nil
}
