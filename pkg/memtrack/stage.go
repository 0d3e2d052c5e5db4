package memtrack

import "fmt"

// Stage identifies a phase of a monitored process lifecycle.
type Stage string

const (
	StageInit  Stage = "init"
	StageTrain Stage = "train"
	StageEval  Stage = "eval"
	StageTest  Stage = "test"
)

// stageTags maps the tags accepted at tracker call sites to their stage.
// The set is closed: starting or stopping the tracker with a tag outside
// this table is a programming error, not a runtime condition.
var stageTags = map[string]Stage{
	"init":     StageInit,
	"train":    StageTrain,
	"eval":     StageEval,
	"evaluate": StageEval,
	"predict":  StageTest,
	"test":     StageTest,
}

// ResolveStage maps a call-site tag to its Stage. It panics on an unknown
// tag: tracker entry points must be registered in stageTags, and an
// unregistered tag means the caller is misusing the API.
func ResolveStage(tag string) Stage {
	stage, ok := stageTags[tag]
	if !ok {
		panic(fmt.Sprintf("memtrack: unknown stage tag %q", tag))
	}
	return stage
}

// Stages returns the closed set of stages in lifecycle order.
func Stages() []Stage {
	return []Stage{StageInit, StageTrain, StageEval, StageTest}
}
