// A thin wrapper over the system clock which can be implemented for use in tests.
package clock

import "time"

type Clock interface {
	CurrentTimeSec() uint64
	Now() time.Time
}

type systemClock struct{}

func NewSystemClock() Clock {
	return &systemClock{}
}

func (sc *systemClock) CurrentTimeSec() uint64 {
	return uint64(time.Now().Unix())
}

func (sc *systemClock) Now() time.Time {
	return time.Now()
}
