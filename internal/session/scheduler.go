package session

import "time"

// Scheduler runs a function once after a delay. Completions scheduled through
// it are independent one-shot tasks: there is no queue and no cancellation,
// so a shorter delay scheduled later can fire first.
type Scheduler interface {
	Schedule(d time.Duration, fn func())
}

// TimerScheduler schedules on the runtime timer heap. The function runs on
// its own goroutine when the timer fires.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
