package domain

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so stores are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts post id generation.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }

// Timestamp normalizes t to the precision every store can round-trip.
func Timestamp(c Clock) time.Time {
	return c.Now().UTC().Truncate(time.Microsecond)
}
