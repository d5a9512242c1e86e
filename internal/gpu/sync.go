//go:build !nogpu

package gpu

import (
	"time"

	"github.com/gogpu/wgpu/hal"
)

// submitTimeout bounds every host wait on the GPU.
const submitTimeout = 5 * time.Second

// pollInterval is the sleep between completion polls.
const pollInterval = 200 * time.Microsecond

// waitSubmission blocks until queue reports submission index as complete.
func waitSubmission(queue hal.Queue, index uint64) error {
	if queue.PollCompleted() >= index {
		return nil
	}
	deadline := time.Now().Add(submitTimeout)
	for queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return ErrGPUTimeout
		}
		time.Sleep(pollInterval)
	}
	return nil
}
