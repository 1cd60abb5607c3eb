package enums

import "testing"

func TestParseNotificationType(t *testing.T) {
	got, err := ParseNotificationType("found_report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != NotificationTypeFoundReport {
		t.Fatalf("expected found_report, got %q", got)
	}
	if _, err := ParseNotificationType("adoption"); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if NotificationTypeLostReport.Label() != "Lost" {
		t.Fatalf("unexpected label %q", NotificationTypeLostReport.Label())
	}
}

func TestParsePresentation(t *testing.T) {
	got, err := ParsePresentation(" Mobile ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != PresentationMobile {
		t.Fatalf("expected mobile, got %q", got)
	}
	if _, err := ParsePresentation("tablet"); err == nil {
		t.Fatal("expected error for unknown presentation")
	}
}
