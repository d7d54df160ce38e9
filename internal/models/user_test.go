package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"passenger role", RolePassenger, true},
		{"driver role", RoleDriver, true},
		{"invalid role", "admin", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_AsPassenger(t *testing.T) {
	user := &User{
		ID:          "+15551234567",
		Name:        "Asha",
		PhoneNumber: "+15551234567",
		Role:        RolePassenger,
	}

	snapshot := user.AsPassenger()
	if snapshot.UserID != user.ID {
		t.Errorf("Expected UserID %s, got %s", user.ID, snapshot.UserID)
	}
	if snapshot.Name != user.Name {
		t.Errorf("Expected Name %s, got %s", user.Name, snapshot.Name)
	}
	if snapshot.PhoneNumber != user.PhoneNumber {
		t.Errorf("Expected PhoneNumber %s, got %s", user.PhoneNumber, snapshot.PhoneNumber)
	}
}
