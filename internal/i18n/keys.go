// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess     = "success"
	KeyError       = "error"
	KeyRateLimited = "rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccountSuspended   = "auth.account_suspended"
	KeyAuthForbidden          = "auth.forbidden"

	// Users
	KeyUserNotFound = "user.not_found"

	// Staff
	KeyAdminAccessDenied = "admin.access_denied"

	// Listings
	KeyBusinessNotFound          = "business.not_found"
	KeyBusinessSubmitted         = "business.submitted"
	KeyBusinessExisting          = "business.existing"
	KeyBusinessUpdated           = "business.updated"
	KeyBusinessPublishRequested  = "business.publish_requested"
	KeyBusinessNotReady          = "business.not_ready"
	KeyBusinessStaleReadiness    = "business.stale_readiness"
	KeyBusinessPublishedReadOnly = "business.published_read_only"
	KeyBusinessInvalidTransition = "business.invalid_transition"
	KeyBusinessDeleted           = "business.deleted"
	KeyApplicationNotFound       = "application.not_found"
	KeyModerationSuccess         = "moderation.success"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationQueue   = "validation.invalid_queue"
	KeyValidationID      = "validation.invalid_id"
	KeyValidationPayload = "validation.invalid_payload"
)
