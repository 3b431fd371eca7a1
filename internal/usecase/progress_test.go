package usecase

import (
	"testing"

	"training-plan-wizard/internal/domain/model"
)

func TestInterpretBands(t *testing.T) {
	cases := []struct {
		name string
		snap *model.JobSnapshot
		want string
	}{
		{"zero", &model.JobSnapshot{Status: model.JobStatusPending, Progress: 0}, "Starting generation"},
		{"band edge 9", &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 9}, "Starting generation"},
		{"band edge 10", &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 10}, "Validating your inputs"},
		{"mid validation", &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 25}, "Validating your inputs"},
		{"history", &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 45}, "Analyzing your training history"},
		{"generating", &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 70}, "Generating your plan"},
		{"finalizing", &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 95}, "Finalizing your plan"},
		{"completed", &model.JobSnapshot{Status: model.JobStatusCompleted, Progress: 100}, "Completed"},
		{"negative clamps", &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: -5}, "Starting generation"},
		{"overshoot clamps", &model.JobSnapshot{Status: model.JobStatusCompleted, Progress: 140}, "Completed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Interpret(tc.snap); got != tc.want {
				t.Errorf("Interpret(%+v) = %q, want %q", tc.snap, got, tc.want)
			}
		})
	}
}

func TestInterpretServerLabelWinsVerbatim(t *testing.T) {
	snap := &model.JobSnapshot{
		Status:      model.JobStatusProcessing,
		Progress:    5,
		CurrentStep: "Warming up the model",
	}
	if got := Interpret(snap); got != "Warming up the model" {
		t.Fatalf("Interpret = %q, want server label verbatim", got)
	}
}

func TestInterpretFullProgressWithoutCompletedStatus(t *testing.T) {
	snap := &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 100}
	if got := Interpret(snap); got != "Finalizing your plan" {
		t.Fatalf("Interpret = %q, want %q: completion is decided by status, not percentage", got, "Finalizing your plan")
	}
}

func TestInterpretCoversAllPercentages(t *testing.T) {
	for pct := 0; pct <= 100; pct++ {
		snap := &model.JobSnapshot{Status: model.JobStatusCompleted, Progress: pct}
		if got := Interpret(snap); got == "" {
			t.Fatalf("Interpret returned empty message for %d%%", pct)
		}
	}
}

func TestInterpretIsPure(t *testing.T) {
	snap := &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 63}
	first := Interpret(snap)
	for i := 0; i < 5; i++ {
		if got := Interpret(snap); got != first {
			t.Fatalf("Interpret flapped: %q then %q", first, got)
		}
	}
}
