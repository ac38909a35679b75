package progress

import "testing"

func TestNoopIndicatorDoesNothing(t *testing.T) {
	var ind Indicator = NoopIndicator{}
	ind.Start("begin")
	ind.StartSection("dims")
	ind.Progress("halfway")
	ind.StopSection("dims")
	ind.Stop()
}

func TestLoggingIndicatorTracksSection(t *testing.T) {
	ind := NewLoggingIndicator(nil)
	ind.StartSection("dimensions")
	if ind.section != "dimensions" {
		t.Errorf("expected section 'dimensions', got %q", ind.section)
	}
	ind.StopSection("dimensions")
	if ind.section != "" {
		t.Errorf("expected section cleared, got %q", ind.section)
	}
}

func TestLoggingIndicatorStopSectionMismatchKeepsSection(t *testing.T) {
	ind := NewLoggingIndicator(nil)
	ind.StartSection("dimensions")
	ind.StopSection("other")
	if ind.section != "dimensions" {
		t.Errorf("expected section to remain 'dimensions', got %q", ind.section)
	}
}
