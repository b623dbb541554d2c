package models

// TaskStatus คือสถานะของ task บน board (Kanban แบบอิสระ)
type TaskStatus string

const (
	StatusUnassigned TaskStatus = "unassigned"
	StatusInProgress TaskStatus = "in_progress"
	StatusDeveloped  TaskStatus = "developed"
	StatusReview     TaskStatus = "review"
	StatusDeploy     TaskStatus = "deploy"
	StatusDone       TaskStatus = "done"
	StatusArchived   TaskStatus = "archived"
)

// AllStatuses in board column order
var AllStatuses = []TaskStatus{
	StatusUnassigned,
	StatusInProgress,
	StatusDeveloped,
	StatusReview,
	StatusDeploy,
	StatusDone,
	StatusArchived,
}

func (s TaskStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// TransitionKind classifies a requested status change
type TransitionKind int

const (
	TransitionInvalid TransitionKind = iota
	TransitionNoop
	TransitionMove      // any non-archived -> any other non-archived
	TransitionArchive   // done -> archived
	TransitionUnarchive // archived -> done
)

// ClassifyTransition ตรวจว่าการเปลี่ยนสถานะ from -> to เป็นแบบไหน
// archived แตะได้เฉพาะ done <-> archived เท่านั้น
func ClassifyTransition(from, to TaskStatus) TransitionKind {
	if !from.IsValid() || !to.IsValid() {
		return TransitionInvalid
	}
	if from == to {
		return TransitionNoop
	}
	switch {
	case from == StatusDone && to == StatusArchived:
		return TransitionArchive
	case from == StatusArchived && to == StatusDone:
		return TransitionUnarchive
	case from == StatusArchived || to == StatusArchived:
		return TransitionInvalid
	default:
		return TransitionMove
	}
}

// TaskPriority
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// TaskComplexity
type TaskComplexity string

const (
	ComplexityEasy   TaskComplexity = "easy"
	ComplexityMedium TaskComplexity = "medium"
	ComplexityHard   TaskComplexity = "hard"
	ComplexityExpert TaskComplexity = "expert"
)

func (c TaskComplexity) IsValid() bool {
	switch c {
	case ComplexityEasy, ComplexityMedium, ComplexityHard, ComplexityExpert:
		return true
	}
	return false
}
