package authdomain

import (
	"testing"
	"time"
)

func TestClaims_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "not expired (future)",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "expired (past)",
			expiresAt: time.Now().Add(-1 * time.Hour),
			want:      true,
		},
		{
			name:      "expired (just now)",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{
				ExpiresAt: tt.expiresAt,
			}
			if got := c.IsExpired(); got != tt.want {
				t.Errorf("Claims.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClaims_CanTriggerUpdates(t *testing.T) {
	for role, want := range map[Role]bool{RoleAdmin: true, RoleViewer: false, Role("owner"): false} {
		c := &Claims{Role: role}
		if got := c.CanTriggerUpdates(); got != want {
			t.Errorf("role %q: CanTriggerUpdates() = %v, want %v", role, got, want)
		}
	}
}

func TestRole_IsValid(t *testing.T) {
	if !RoleAdmin.IsValid() || !RoleViewer.IsValid() {
		t.Error("expected admin and viewer to be valid")
	}
	if Role("").IsValid() {
		t.Error("expected empty role to be invalid")
	}
}
