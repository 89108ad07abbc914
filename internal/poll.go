package internal

import (
	"time"

	"github.com/soypat/ytsw"
)

// PollTimeout calls op every interval until cond returns true for the sampled
// value or timeout elapses. After the deadline op is sampled one last time so
// the returned value reflects the device state at the deadline and not a
// sample taken up to one interval earlier.
//
// The last sampled value is always returned. The error is [ytsw.ErrTimeout]
// if cond never held, or the first error returned by op.
func PollTimeout[T any](op func() (T, error), cond func(T) bool, interval, timeout time.Duration) (T, error) {
	deadline := time.Now().Add(timeout)
	for {
		v, err := op()
		if err != nil {
			return v, err
		} else if cond(v) {
			return v, nil
		}
		if time.Now().After(deadline) {
			v, err = op()
			if err != nil {
				return v, err
			} else if cond(v) {
				return v, nil
			}
			return v, ytsw.ErrTimeout
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}
