package access

import (
	"errors"
	"testing"
)

func TestCanAccess(t *testing.T) {
	member := Actor{UserID: "u1", ClubID: "club-a", Role: RoleMember}
	admin := Actor{UserID: "u2", ClubID: "club-hq", Role: RoleAdmin}
	clubless := Actor{UserID: "u3", Role: RoleMember}

	if !member.CanAccess("club-a") {
		t.Fatalf("member should access own club")
	}
	if member.CanAccess("club-b") {
		t.Fatalf("member must not access a foreign club")
	}
	if !admin.CanAccess("club-b") {
		t.Fatalf("admin should access every club")
	}
	if clubless.CanAccess("") {
		t.Fatalf("empty club ids must never match")
	}
}

func TestScopeClubID(t *testing.T) {
	member := Actor{ClubID: "club-a", Role: RoleMember}
	admin := Actor{ClubID: "club-hq", Role: RoleAdmin}

	got, err := member.ScopeClubID("")
	if err != nil || got == nil || *got != "club-a" {
		t.Fatalf("member scope: got %v %v", got, err)
	}

	if _, err := member.ScopeClubID("club-b"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member asking for foreign club: got %v", err)
	}

	got, err = admin.ScopeClubID("")
	if err != nil || got != nil {
		t.Fatalf("admin unscoped: got %v %v", got, err)
	}

	got, err = admin.ScopeClubID("club-b")
	if err != nil || got == nil || *got != "club-b" {
		t.Fatalf("admin narrowed: got %v %v", got, err)
	}
}

func TestResolveClubID(t *testing.T) {
	tests := []struct {
		name      string
		actor     Actor
		requested string
		want      string
		wantErr   error
	}{
		{"member_default", Actor{ClubID: "a", Role: RoleMember}, "", "a", nil},
		{"member_same", Actor{ClubID: "a", Role: RoleMember}, "a", "a", nil},
		{"member_foreign", Actor{ClubID: "a", Role: RoleMember}, "b", "", ErrForbidden},
		{"admin_named", Actor{ClubID: "hq", Role: RoleAdmin}, "b", "b", nil},
		{"admin_default", Actor{ClubID: "hq", Role: RoleAdmin}, "", "hq", nil},
		{"admin_without_club", Actor{Role: RoleAdmin}, "", "", ErrClubRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.actor.ResolveClubID(tt.requested)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("club: got %q want %q", got, tt.want)
			}
		})
	}
}
