package tasks

import (
	"time"

	"contract-admin/schedule/services"

	"github.com/jasonlvhit/gocron"
)

// Task runs the background jobs until the returned stop function is called.
// A nil job is skipped.
func Task(poll *services.WalletPoll, pollSeconds uint64, monitor *services.BalanceMonitor) (stop func()) {
	s := gocron.NewScheduler()
	s.ChangeLoc(time.UTC)

	if poll != nil {
		_ = s.Every(pollSeconds).Seconds().Do(poll.Poll)
	}
	if monitor != nil {
		monitor.Monitor()
		_ = s.Every(30).Minutes().From(gocron.NextTick()).Do(monitor.Monitor)
	}

	stopped := s.Start()
	return func() {
		stopped <- true
		s.Clear()
	}
}
