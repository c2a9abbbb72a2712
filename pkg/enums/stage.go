package enums

import "fmt"

// Stage is a position in the fixed manufacturing sequence a spool moves
// through. The declaration order of stageOrder is the canonical order.
type Stage string

const (
	StageFabrication Stage = "FABRICATION"
	StageLogistics1  Stage = "LOGISTICS_1"
	StagePainting    Stage = "PAINTING"
	StageLogistics2  Stage = "LOGISTICS_2"
	StageOnBoard     Stage = "ON_BOARD"
)

var stageOrder = []Stage{
	StageFabrication,
	StageLogistics1,
	StagePainting,
	StageLogistics2,
	StageOnBoard,
}

// Stages returns the full sequence in manufacturing order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Stage.
func (s Stage) IsValid() bool {
	for _, candidate := range stageOrder {
		if candidate == s {
			return true
		}
	}
	return false
}

// Index returns the zero-based position of the stage in the sequence, or -1
// for unknown values.
func (s Stage) Index() int {
	for i, candidate := range stageOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Previous returns the stage immediately before s in the sequence. The second
// return is false when s is the first stage or not a known stage.
func (s Stage) Previous() (Stage, bool) {
	idx := s.Index()
	if idx <= 0 {
		return "", false
	}
	return stageOrder[idx-1], true
}

// ParseStage converts raw input into a Stage.
func ParseStage(value string) (Stage, error) {
	for _, candidate := range stageOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stage %q", value)
}
