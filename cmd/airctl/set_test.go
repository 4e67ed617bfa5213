package main

import "testing"

func TestParseAssignmentsTypes(t *testing.T) {
	data, err := parseAssignments([]string{"power=true", "D0310A=3", "name=\"bedroom\"", "mode=auto"})
	if err != nil {
		t.Fatalf("parseAssignments failed: %v", err)
	}

	if data["power"] != true {
		t.Errorf("power = %v, want bool true", data["power"])
	}
	if data["D0310A"] != float64(3) {
		t.Errorf("D0310A = %v, want float64(3)", data["D0310A"])
	}
	if data["name"] != "bedroom" {
		t.Errorf("name = %v, want unquoted string bedroom", data["name"])
	}
	if data["mode"] != "auto" {
		t.Errorf("mode = %v, want fallback bare string auto", data["mode"])
	}
}

func TestParseAssignmentsRejectsMissingEquals(t *testing.T) {
	if _, err := parseAssignments([]string{"power"}); err == nil {
		t.Fatalf("expected an error for an assignment missing '='")
	}
}

func TestParseAssignmentsMultipleKeys(t *testing.T) {
	data, err := parseAssignments([]string{"a=1", "b=2", "a=3"})
	if err != nil {
		t.Fatalf("parseAssignments failed: %v", err)
	}
	if data["a"] != float64(3) {
		t.Errorf("expected the later a= assignment to win, got %v", data["a"])
	}
	if data["b"] != float64(2) {
		t.Errorf("b = %v, want float64(2)", data["b"])
	}
}
