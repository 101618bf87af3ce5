package model

// Status replaces the visible/deleted flag pair of the old schema with a
// single enum, so "visible but deleted" cannot be represented.
type Status string

const (
	StatusPending   Status = "pending" // awaiting moderation
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
	StatusDeleted   Status = "deleted"
)

func (s Status) Visible() bool {
	return s == StatusPublished
}
