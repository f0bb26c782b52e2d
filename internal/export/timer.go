package export

import "time"

// Timer measures one interval at a time.
type Timer struct {
	Now   func() time.Time
	start time.Time
}

func (t *Timer) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func (t *Timer) Start() {
	t.start = t.now()
}

// Stop returns the time elapsed since the last Start.
func (t *Timer) Stop() time.Duration {
	return t.now().Sub(t.start)
}
