package filters

import "time"

// Stopper cancels a scheduled task. Stop reports whether the task was
// cancelled before it ran.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d, on its own goroutine. f must never run
// before AfterFunc returns.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// TimerScheduler schedules with time.AfterFunc
func TimerScheduler() Scheduler {
	return timerScheduler{}
}
