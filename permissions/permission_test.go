package permissions_test

import (
	"basera/permissions"
	"testing"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	if data == nil {
		t.Fatal("expected embedded permissions to load")
	}

	if len(data.Endpoints) == 0 {
		t.Fatal("expected at least one endpoint")
	}
}

func TestFindPermissions(t *testing.T) {
	data := permissions.Get()
	if data == nil {
		t.Fatal("expected embedded permissions to load")
	}

	perm := data.FindPermissions("/v1/bookings", "POST")
	if len(perm.Roles) == 0 {
		t.Error("expected roles for booking creation")
	}

	// Subrouter patterns carry a trailing slash.
	trailing := data.FindPermissions("/v1/bookings/", "POST")
	if len(trailing.Roles) != len(perm.Roles) {
		t.Error("expected trailing-slash lookup to resolve the same endpoint")
	}

	health := data.FindPermissions("/health", "GET")
	if !health.Skip {
		t.Error("expected health endpoint to skip auth")
	}

	unknown := data.FindPermissions("/v1/nope", "GET")
	if unknown.Path != "" || len(unknown.Roles) != 0 {
		t.Errorf("expected empty permission for unknown endpoint, got %+v", unknown)
	}
}
