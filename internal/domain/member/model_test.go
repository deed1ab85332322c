package member

import "testing"

// TestFullName_WithMiddleName verifies the middle name is included when set.
func TestFullName_WithMiddleName(t *testing.T) {
	m := Member{FirstName: "Jane", MiddleName: "Q", LastName: "Doe"}
	if got := m.FullName(); got != "Jane Q Doe" {
		t.Errorf("expected 'Jane Q Doe', got %q", got)
	}
}

// TestFullName_NoMiddleName verifies no double space for an empty middle name.
func TestFullName_NoMiddleName(t *testing.T) {
	m := Member{FirstName: "Jane", LastName: "Doe"}
	if got := m.FullName(); got != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got %q", got)
	}
}

// TestAdmin verifies the 0/1 wire encoding maps to a boolean.
func TestAdmin(t *testing.T) {
	if (Member{IsAdmin: 0}).Admin() {
		t.Error("is_admin=0 should not be admin")
	}
	if !(Member{IsAdmin: 1}).Admin() {
		t.Error("is_admin=1 should be admin")
	}
}

// TestHasKnownPlan_Unrecognised verifies unknown plans are flagged, not rejected.
func TestHasKnownPlan_Unrecognised(t *testing.T) {
	m := Member{Plan: "Legacy Gold"}
	if m.HasKnownPlan() {
		t.Error("unrecognised plan should not be known")
	}
	m.Plan = PlanStudent
	if !m.HasKnownPlan() {
		t.Error("Student Member should be a known plan")
	}
}

// TestValidStatus verifies status filter validation.
func TestValidStatus(t *testing.T) {
	for _, s := range Statuses {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidStatus("active") {
		t.Error("status matching is case-sensitive")
	}
	if ValidStatus("") {
		t.Error("empty status is not a valid filter value")
	}
}

// TestCreated_ParsesRFC3339 verifies timestamp parsing for display.
func TestCreated_ParsesRFC3339(t *testing.T) {
	m := Member{CreatedAt: "2025-06-01T10:30:00Z"}
	got := m.Created()
	if got.IsZero() {
		t.Fatal("expected parsed time, got zero")
	}
	if got.Year() != 2025 || got.Month() != 6 {
		t.Errorf("unexpected parsed time: %v", got)
	}
}

// TestCreated_Unparseable verifies the zero time fallback.
func TestCreated_Unparseable(t *testing.T) {
	m := Member{CreatedAt: "not a date"}
	if !m.Created().IsZero() {
		t.Error("expected zero time for unparseable created_at")
	}
}
