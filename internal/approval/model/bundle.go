package model

// BundleStatus represents the state of a bundle of submissions grouped for
// one combined reviewer decision.
type BundleStatus string

const (
	BundleStatusPending   BundleStatus = "PENDING"   // Awaiting a combined decision
	BundleStatusProcessed BundleStatus = "PROCESSED" // A decision has been fanned out to all members
)

// Bundle groups independently-submitted forms so one reviewer decision fans
// out across all of them. The member set is immutable after creation.
type Bundle struct {
	BaseModel
	SubmissionIDs UUIDArray    `gorm:"type:jsonb;column:submission_ids;not null;serializer:json" json:"submissionIds"`
	SubmittedBy   string       `gorm:"type:varchar(100);column:submitted_by;not null" json:"submittedBy"`
	Status        BundleStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`
}

func (b *Bundle) TableName() string {
	return "bundles"
}
