// internal/lifecycle/status.go
package lifecycle

// BusinessStatus controls public visibility of a listing.
type BusinessStatus string

const (
	BusinessStatusDraft     BusinessStatus = "draft"
	BusinessStatusInReview  BusinessStatus = "in_review"
	BusinessStatusPublished BusinessStatus = "published"
	BusinessStatusDeleted   BusinessStatus = "deleted"
)

// ApplicationStatus is the position of a listing in the moderation workflow.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted      ApplicationStatus = "submitted"
	ApplicationStatusNeedsInfo      ApplicationStatus = "needs_info"
	ApplicationStatusReadyForReview ApplicationStatus = "ready_for_review"
	ApplicationStatusApproved       ApplicationStatus = "approved"
	ApplicationStatusRejected       ApplicationStatus = "rejected"
	ApplicationStatusDeleted        ApplicationStatus = "deleted"
)

// AdminStatus is the administrative visibility flag, orthogonal to the public lifecycle.
type AdminStatus string

const (
	AdminStatusActive   AdminStatus = "active"
	AdminStatusArchived AdminStatus = "archived"
	AdminStatusDeleted  AdminStatus = "deleted"
)

// State is the full status triple of a listing.
type State struct {
	Application ApplicationStatus `json:"application_status"`
	Business    BusinessStatus    `json:"business_status"`
	Admin       AdminStatus       `json:"admin_status"`
}

// IsZero reports whether the listing has not been submitted yet.
func (s State) IsZero() bool {
	return s.Application == "" && s.Business == "" && s.Admin == ""
}

// IsDeleted reports whether any of the three statuses reached the terminal deleted value.
func (s State) IsDeleted() bool {
	return s.Business == BusinessStatusDeleted ||
		s.Application == ApplicationStatusDeleted ||
		s.Admin == AdminStatusDeleted
}

// IsPublished reports whether the listing is publicly visible.
func (s State) IsPublished() bool {
	return s.Business == BusinessStatusPublished && s.Admin == AdminStatusActive
}
