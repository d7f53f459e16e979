package metrics

import "github.com/AnyUserName/wallthumb/internal/report"

// Observer feeds cache manager and generator events into the collectors
// declared in metrics.go.
type Observer struct{}

func (Observer) ObserveItem(outcome report.Outcome, seconds float64) {
	ThumbnailsTotal.WithLabelValues(string(outcome)).Inc()
	ThumbnailItemDuration.Observe(seconds)
}

func (Observer) ObserveReclaim(deleted, failed int) {
	OrphansReclaimedTotal.Add(float64(deleted))
	ReclaimFailuresTotal.Add(float64(failed))
	MarkRun("reclaim")
}

func (Observer) ObservePopulate() {
	MarkRun("populate")
}

func (Observer) ObservePhase(phase string, seconds float64) {
	ThumbnailPhaseDuration.WithLabelValues(phase).Observe(seconds)
}
