// Package scopes defines the authorization scope vocabulary shared by API
// clients and end-user sessions. A scope is a string token denoting a discrete
// permission (RFC 6749 §3.3); authorization decisions are scope-based, not
// all-or-nothing. Refer to scopes through these constants rather than writing
// new string literals.
package scopes

const (
	// EditProfile authorizes editing a user profile (affiliation, full name,
	// e-mail address).
	EditProfile = "profile:update"

	// ViewProfile authorizes viewing the content of a user profile.
	ViewProfile = "profile:read"

	// CreateSubmission authorizes creating a new submission.
	CreateSubmission = "submission:create"

	// EditSubmission authorizes updating a submission that has not yet been
	// announced.
	EditSubmission = "submission:update"

	// ViewSubmission authorizes viewing a submission.
	ViewSubmission = "submission:read"

	// ProxySubmission authorizes creating a submission on behalf of another
	// user.
	ProxySubmission = "submission:proxy"

	// ReadUpload authorizes viewing the content of an upload workspace.
	ReadUpload = "upload:read"

	// WriteUpload authorizes uploading files to a workspace.
	WriteUpload = "upload:write"

	// ReleaseUpload authorizes releasing an upload workspace.
	ReleaseUpload = "upload:release"

	// AdminUpload authorizes administrative powers related to uploads.
	AdminUpload = "upload:admin"
)

// GeneralUser is the default scope set attached to an authenticated end-user
// session.
var GeneralUser = []string{
	EditProfile,
	ViewProfile,
	CreateSubmission,
	EditSubmission,
	ViewSubmission,
}
