// Package snowflake handles the time-ordered post IDs used across the feed:
// 41 bits of millisecond timestamp (offset from the Twitter epoch) followed
// by 22 low bits of datacenter/worker/sequence.
package snowflake

import (
	"fmt"
	"strconv"
	"time"
)

// Epoch is the Twitter snowflake epoch (November 4, 2010) in Unix millis.
const Epoch int64 = 1288834974657

const (
	timestampShift = 22
	datacenterBits = 5
	workerBits     = 5
	sequenceBits   = 12
)

// RandSource supplies the low bits of generated IDs. math/rand.Rand satisfies
// it; callers seed it so generation stays deterministic.
type RandSource interface {
	Intn(n int) int
}

// New builds a snowflake ID for the given creation time. The datacenter,
// worker and sequence bits come from rng.
func New(ts time.Time, rng RandSource) string {
	elapsed := ts.UnixMilli() - Epoch
	datacenter := int64(rng.Intn(1 << datacenterBits))
	worker := int64(rng.Intn(1 << workerBits))
	sequence := int64(rng.Intn(1 << sequenceBits))

	id := (elapsed << timestampShift) |
		(datacenter << (workerBits + sequenceBits)) |
		(worker << sequenceBits) |
		sequence
	return strconv.FormatInt(id, 10)
}

// FromAge builds an ID whose embedded timestamp is hoursAgo before now.
func FromAge(hoursAgo float64, now time.Time, rng RandSource) string {
	ts := now.Add(-time.Duration(hoursAgo * float64(time.Hour)))
	return New(ts, rng)
}

// Timestamp recovers the creation time encoded in an ID.
func Timestamp(id string) (time.Time, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed snowflake id %q: %w", id, err)
	}
	millis := (n >> timestampShift) + Epoch
	return time.UnixMilli(millis), nil
}

// AgeHours returns the age of the post identified by id, relative to now.
func AgeHours(id string, now time.Time) (float64, error) {
	ts, err := Timestamp(id)
	if err != nil {
		return 0, err
	}
	return now.Sub(ts).Hours(), nil
}
