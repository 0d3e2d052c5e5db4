package memtrack

import "testing"

func TestResolveStage(t *testing.T) {
	tests := []struct {
		tag  string
		want Stage
	}{
		{"init", StageInit},
		{"train", StageTrain},
		{"eval", StageEval},
		{"evaluate", StageEval},
		{"predict", StageTest},
		{"test", StageTest},
	}

	for _, tc := range tests {
		if got := ResolveStage(tc.tag); got != tc.want {
			t.Errorf("ResolveStage(%q) = %q, want %q", tc.tag, got, tc.want)
		}
	}
}

func TestResolveStage_UnknownTagPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown tag")
		}
	}()
	ResolveStage("checkpoint")
}

func TestStages_Closed(t *testing.T) {
	stages := Stages()
	if len(stages) != 4 {
		t.Fatalf("expected 4 stages, got %d", len(stages))
	}
	for _, s := range stages {
		if ResolveStage(string(s)) != s {
			t.Errorf("stage %q does not resolve to itself", s)
		}
	}
}
