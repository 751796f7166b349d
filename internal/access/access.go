// Package access holds the caller identity and the club scoping rules shared by
// every resource handler.
package access

import "errors"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrClubRequired = errors.New("clubId is required for admin writes")
)

// Actor is the authenticated caller as carried by the access token.
type Actor struct {
	UserID string
	ClubID string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the actor may read or write a row owned by clubID.
func (a Actor) CanAccess(clubID string) bool {
	if a.IsAdmin() {
		return true
	}
	return a.ClubID != "" && a.ClubID == clubID
}

// ScopeClubID is the club filter for list queries: nil means every club.
// Admins may narrow with requested; members are pinned to their own club.
func (a Actor) ScopeClubID(requested string) (*string, error) {
	if a.IsAdmin() {
		if requested == "" {
			return nil, nil
		}
		return &requested, nil
	}
	if requested != "" && requested != a.ClubID {
		return nil, ErrForbidden
	}
	club := a.ClubID
	return &club, nil
}

// ResolveClubID picks the owning club for a new row.
func (a Actor) ResolveClubID(requested string) (string, error) {
	if a.IsAdmin() {
		if requested != "" {
			return requested, nil
		}
		if a.ClubID != "" {
			return a.ClubID, nil
		}
		return "", ErrClubRequired
	}
	if requested != "" && requested != a.ClubID {
		return "", ErrForbidden
	}
	return a.ClubID, nil
}
