package usecase

import "training-plan-wizard/internal/domain/model"

// progressBand maps an inclusive percentage range to a display message. The
// bands are contiguous and cover all of [0,100].
type progressBand struct {
	lo, hi  int
	message string
}

var progressBands = []progressBand{
	{0, 9, "Starting generation"},
	{10, 39, "Validating your inputs"},
	{40, 54, "Analyzing your training history"},
	{55, 89, "Generating your plan"},
	{90, 99, "Finalizing your plan"},
	{100, 100, "Completed"},
}

// Interpret maps a status snapshot to a display message. A non-empty phase
// label from the server is used verbatim; otherwise the percentage band table
// decides. Pure: identical snapshots always yield identical messages, and the
// function never consults time or attempt counts.
//
// Progress is not guaranteed to be monotonic, so any value is tolerated, but a
// message implying completion is only produced once the status tag says so.
func Interpret(snap *model.JobSnapshot) string {
	if snap.CurrentStep != "" {
		return snap.CurrentStep
	}

	pct := snap.Progress
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct == 100 && snap.Status != model.JobStatusCompleted {
		pct = 99
	}

	for _, b := range progressBands {
		if pct >= b.lo && pct <= b.hi {
			return b.message
		}
	}
	// Unreachable while the table stays exhaustive.
	return progressBands[0].message
}
