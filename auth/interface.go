package auth

import (
	"context"
	"net/http"
)

// Verifier turns a bearer token into an authenticated identity.
//
// This interface is implemented by the concrete *TokenValidator type.
type Verifier interface {
	// Verify checks the signature and claims of token. Failures are
	// *apperr.Error values with status 401.
	Verify(ctx context.Context, token string) (*Auth, error)

	// Authenticate verifies the bearer token of r.
	Authenticate(r *http.Request) (*Auth, error)
}

// PermissionChecker authorizes the identity of a record.
//
// This interface is implemented by *Auth.
type PermissionChecker interface {
	// CheckPermission fails unless the caller may create measurements for
	// details. operation labels the check in audit logs, e.g. "POST topic".
	// A successful check may fill in details.Organization.
	CheckPermission(ctx context.Context, details *EntityDetails, operation string) error
}

// EntityDetails is the identity a record claims to belong to. Nil fields were
// not given in the record.
type EntityDetails struct {
	ProjectID *string
	UserID    *string
	SourceID  *string

	// Organization of the project, set by CheckPermission.
	Organization string
}

// ID returns a comparable snapshot of the identity fields. Organization is
// not part of it.
func (d *EntityDetails) ID() AuthID {
	var id AuthID
	if d.ProjectID != nil {
		id.Project, id.HasProject = *d.ProjectID, true
	}
	if d.UserID != nil {
		id.User, id.HasUser = *d.UserID, true
	}
	if d.SourceID != nil {
		id.Source, id.HasSource = *d.SourceID, true
	}
	return id
}

// AuthID identifies a distinct (project, user, source) tuple. Two ids are
// equal iff all three fields and their presence match.
type AuthID struct {
	Project    string
	User       string
	Source     string
	HasProject bool
	HasUser    bool
	HasSource  bool
}

// Details returns fresh EntityDetails holding the fields of id.
func (id AuthID) Details() *EntityDetails {
	d := &EntityDetails{}
	if id.HasProject {
		p := id.Project
		d.ProjectID = &p
	}
	if id.HasUser {
		u := id.User
		d.UserID = &u
	}
	if id.HasSource {
		s := id.Source
		d.SourceID = &s
	}
	return d
}

type contextKey struct{}

// WithAuth returns a copy of ctx that carries a.
func WithAuth(ctx context.Context, a *Auth) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the identity attached by WithAuth.
func FromContext(ctx context.Context) (*Auth, bool) {
	a, ok := ctx.Value(contextKey{}).(*Auth)
	return a, ok && a != nil
}
