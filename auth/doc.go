// Package auth authenticates gateway callers and authorizes the identity of
// every submitted record.
//
// A TokenValidator verifies JWT bearer tokens (RSA or ECDSA signatures) with
// github.com/golang-jwt/jwt/v5 and turns their claims into an *Auth:
//
//	{
//	  "sub": "user-1",
//	  "aud": ["res_gateway"],
//	  "scope": ["MEASUREMENT.CREATE"],
//	  "roles": ["radar-test:ROLE_PARTICIPANT"],
//	  "sources": ["source-1"],
//	  "organizations": {"radar-test": "main"}
//	}
//
// *Auth implements PermissionChecker. A record identity is accepted when the
// token has the MEASUREMENT.CREATE scope, has a role in the project, belongs
// to the same user and, when Config.CheckSourceID is set, lists the source.
// Missing identity fields fail with 400, mismatches with 403
// "permission_mismatch". A successful check records the organization of the
// project in EntityDetails.Organization; compare identities by their AuthID,
// taken before the check.
//
// Records without a project are assigned Auth.DefaultProject: the "project"
// claim if present, else the first project in which the caller has
// ROLE_PARTICIPANT.
package auth
