package sessions

import "time"

// Status represents the linear lifecycle of a processing session. There are
// no backward transitions; fatal aborts jump straight to failed.
type Status string

const (
	StatusCreated           Status = "created"
	StatusWorkspacePrepared Status = "workspace_prepared"
	StatusConverted         Status = "converted"
	StatusMetadataExtracted Status = "metadata_extracted"
	StatusImagesRendered    Status = "images_rendered"
	StatusAssembled         Status = "assembled"
	StatusReleased          Status = "released"
	StatusFailed            Status = "failed"
)

var allStatuses = []Status{
	StatusCreated,
	StatusWorkspacePrepared,
	StatusConverted,
	StatusMetadataExtracted,
	StatusImagesRendered,
	StatusAssembled,
	StatusReleased,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether the status is one of the lifecycle states.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether no further stage transitions can follow.
func (s Status) Terminal() bool {
	return s == StatusReleased || s == StatusFailed
}

// Session is one processing request's ledger row. The ledger is transient
// bookkeeping for the reaper and operator visibility; artifact content never
// lives here.
type Session struct {
	ID            string
	ScoreID       string
	WorkspacePath string
	Status        Status
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ReleaseAfter  *time.Time
}
