package animation

import (
	"context"
	"time"
)

// Drive fires frames into q at a fixed synthetic rate starting from start,
// until no frame is pending or ctx is done. It returns the number of frames
// delivered. No real time passes, so a run is reproducible for a given fps.
func Drive(ctx context.Context, q *FrameQueue, fps int, start time.Time) (int, error) {
	if fps <= 0 {
		fps = 60
	}
	step := time.Second / time.Duration(fps)
	now := start
	frames := 0
	for q.Pending() {
		select {
		case <-ctx.Done():
			return frames, ctx.Err()
		default:
		}
		q.Fire(now)
		frames++
		now = now.Add(step)
	}
	return frames, nil
}

// Realtime fires frames into q from a wall-clock ticker on the calling
// goroutine and runs every function received on intents on that same
// goroutine, so the loop never sees concurrent calls. It returns when ctx is
// done.
func Realtime(ctx context.Context, q *FrameQueue, fps int, intents <-chan func(), onFrame func()) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-intents:
			fn()
		case now := <-ticker.C:
			if q.Fire(now) && onFrame != nil {
				onFrame()
			}
		}
	}
}
