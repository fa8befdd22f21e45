package models

import "testing"

func TestHasPermission(t *testing.T) {
	client := &AdminClient{
		IsActive:    true,
		Permissions: []string{"applications:read"},
	}

	if !client.HasPermission("applications:read") {
		t.Error("expected exact permission to match")
	}
	if client.HasPermission("applications:write") {
		t.Error("did not expect write permission")
	}
}

func TestHasPermissionWildcards(t *testing.T) {
	client := &AdminClient{
		IsActive:    true,
		Permissions: []string{"applications:*"},
	}

	if !client.HasPermission("applications:read") {
		t.Error("expected scoped wildcard to match read")
	}
	if !client.HasPermission("applications:write") {
		t.Error("expected scoped wildcard to match write")
	}
	if client.HasPermission("clients:read") {
		t.Error("scoped wildcard must not cross scopes")
	}

	super := &AdminClient{IsActive: true, Permissions: []string{"*"}}
	if !super.HasPermission("anything:at:all") {
		t.Error("expected global wildcard to match everything")
	}
}

func TestHasPermissionInactiveClient(t *testing.T) {
	client := &AdminClient{
		IsActive:    false,
		Permissions: []string{"*"},
	}
	if client.HasPermission("applications:read") {
		t.Error("inactive client must have no permissions")
	}

	var nilClient *AdminClient
	if nilClient.HasPermission("applications:read") {
		t.Error("nil client must have no permissions")
	}
}

func TestMaskedAPIKey(t *testing.T) {
	client := &AdminClient{APIKey: "sk_1234567890"}
	if got := client.MaskedAPIKey(); got != "sk_12345..." {
		t.Errorf("unexpected mask '%s'", got)
	}

	short := &AdminClient{APIKey: "abc"}
	if got := short.MaskedAPIKey(); got != "***" {
		t.Errorf("unexpected mask '%s'", got)
	}
}

func TestHasEntrance(t *testing.T) {
	app := &Application{}
	if app.HasEntrance() {
		t.Error("expected no entrance block")
	}

	app.EntranceMarks = &EntranceMarks{TotalFigures: "470"}
	if !app.HasEntrance() {
		t.Error("expected entrance block")
	}
}
