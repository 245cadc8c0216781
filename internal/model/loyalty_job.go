package model

import "time"

// Loyalty counter directions.
const (
	DirectionInc = "inc"
	DirectionDec = "dec"
)

// LoyaltyJob is a pending loyalty counter update. CreatedAt is set once when
// the job is first enqueued and survives every retry, so the TTL measures the
// age of the update rather than of the latest attempt.
type LoyaltyJob struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Direction string `json:"direction"`
	Attempt   int    `json:"attempt"`
	// CreatedAt is Unix milliseconds.
	CreatedAt int64 `json:"createdAt"`

	// Raw is the payload the job was read from. The queue matches the
	// in-flight entry by these bytes.
	Raw string `json:"-"`
}

// CreatedTime returns CreatedAt as a time.Time.
func (j *LoyaltyJob) CreatedTime() time.Time {
	return time.UnixMilli(j.CreatedAt)
}

// Expired reports whether the job has outlived ttl at now.
func (j *LoyaltyJob) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(j.CreatedTime().Add(ttl))
}

// Next returns the job to enqueue after a failed attempt.
func (j *LoyaltyJob) Next() *LoyaltyJob {
	next := *j
	next.Attempt++
	next.Raw = ""
	return &next
}
