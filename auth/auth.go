package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aalemi-dev/kafka-gateway/apperr"
)

// Claims are the JWT claims the gateway reads from an access token.
type Claims struct {
	jwt.RegisteredClaims

	Scope   Scopes   `json:"scope,omitempty"`
	Roles   []string `json:"roles,omitempty"`
	Sources []string `json:"sources,omitempty"`

	// Project pins the token to a single project.
	Project string `json:"project,omitempty"`

	// Organizations maps project names to their organization.
	Organizations map[string]string `json:"organizations,omitempty"`
}

// Scopes accepts both a space separated string and a JSON array.
type Scopes []string

func (s *Scopes) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("scope must be a string or an array of strings: %w", err)
	}
	*s = strings.Fields(text)
	return nil
}

// Auth is the identity of an authenticated caller.
type Auth struct {
	// UserID is the token subject, empty for client credentials tokens.
	UserID string

	// DefaultProject is filled into records that do not name a project: the
	// project claim, else the first project the caller participates in.
	DefaultProject string

	scopes        map[string]struct{}
	roles         map[string][]string
	sources       map[string]struct{}
	organizations map[string]string
	checkSourceID bool
}

// NewAuth builds the identity described by claims.
func NewAuth(claims *Claims, checkSourceID bool) *Auth {
	a := &Auth{
		UserID:        claims.Subject,
		scopes:        make(map[string]struct{}, len(claims.Scope)),
		roles:         make(map[string][]string),
		sources:       make(map[string]struct{}, len(claims.Sources)),
		organizations: claims.Organizations,
		checkSourceID: checkSourceID,
	}
	for _, s := range claims.Scope {
		a.scopes[s] = struct{}{}
	}
	for _, s := range claims.Sources {
		a.sources[s] = struct{}{}
	}

	var participant string
	for _, r := range claims.Roles {
		project, role, ok := strings.Cut(r, ":")
		if !ok {
			project, role = "", r
		}
		a.roles[project] = append(a.roles[project], role)
		if participant == "" && project != "" && role == RoleParticipant {
			participant = project
		}
	}

	a.DefaultProject = claims.Project
	if a.DefaultProject == "" {
		a.DefaultProject = participant
	}
	return a
}

// HasScope reports whether the token grants scope.
func (a *Auth) HasScope(scope string) bool {
	_, ok := a.scopes[scope]
	return ok
}

// HasRole reports whether the caller has role in project.
func (a *Auth) HasRole(project, role string) bool {
	for _, r := range a.roles[project] {
		if r == role {
			return true
		}
	}
	return false
}

// CheckPermission implements PermissionChecker.
func (a *Auth) CheckPermission(_ context.Context, d *EntityDetails, operation string) error {
	if !a.HasScope(ScopeMeasurementCreate) {
		return apperr.Forbidden("permission_mismatch",
			fmt.Sprintf("No permission to create measurement for %s", operation))
	}
	if d.ProjectID == nil {
		return apperr.BadRequest("project_id_missing", "Missing project ID in request")
	}
	if d.UserID == nil {
		return apperr.BadRequest("user_id_missing", "Missing user ID in request")
	}
	if a.checkSourceID && d.SourceID == nil {
		return apperr.BadRequest("source_id_missing", "Missing source ID in request")
	}

	if _, ok := a.roles[*d.ProjectID]; !ok || !a.allowsUser(*d.UserID) || !a.allowsSource(d.SourceID) {
		return apperr.Forbidden("permission_mismatch", fmt.Sprintf(
			"No permission to create measurement for %s (%s)", describe(d), operation))
	}

	if org, ok := a.organizations[*d.ProjectID]; ok {
		d.Organization = org
	}
	return nil
}

func (a *Auth) allowsUser(user string) bool {
	return a.UserID == "" || a.UserID == user
}

func (a *Auth) allowsSource(source *string) bool {
	if source == nil || !a.checkSourceID || len(a.sources) == 0 {
		return true
	}
	_, ok := a.sources[*source]
	return ok
}

func describe(d *EntityDetails) string {
	s := fmt.Sprintf("project %s with user %s", deref(d.ProjectID), deref(d.UserID))
	if d.SourceID != nil {
		s += " and source " + *d.SourceID
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return "<none>"
	}
	return *s
}
