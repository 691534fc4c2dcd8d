package domain

// FileState is the approval state of a file.
type FileState string

const (
	StateDraft    FileState = "DRAFT"
	StateInReview FileState = "IN_REVIEW"
	StateReturned FileState = "RETURNED"
	StateCabinet  FileState = "CABINET"
	StateApproved FileState = "APPROVED"
	StateRejected FileState = "REJECTED"
	StateArchived FileState = "ARCHIVED"
)

// Action is a workflow action requested on a file.
type Action string

const (
	ActionSaveDraft Action = "SAVE_DRAFT"
	ActionSubmit    Action = "SUBMIT"
	ActionApprove   Action = "APPROVE"
	ActionReturn    Action = "RETURN"
	ActionResubmit  Action = "RESUBMIT"
	ActionHold      Action = "HOLD"
	ActionResume    Action = "RESUME"
	ActionReject    Action = "REJECT"
	ActionArchive   Action = "ARCHIVE"

	// audit only
	ActionLevelSkipped Action = "LEVEL_SKIPPED"
	ActionDaakLinked   Action = "DAAK_LINKED"
)

// LevelStatus is the status of one workflow level row.
type LevelStatus string

const (
	LevelPending   LevelStatus = "PENDING"
	LevelActive    LevelStatus = "ACTIVE"
	LevelCompleted LevelStatus = "COMPLETED"
	LevelSkipped   LevelStatus = "SKIPPED"
	LevelReturned  LevelStatus = "RETURNED"
)

// DaakDirection tells inward letters from outward ones.
type DaakDirection string

const (
	DaakInward  DaakDirection = "INWARD"
	DaakOutward DaakDirection = "OUTWARD"
)
