package utils

import (
	"testing"
	"time"
)

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	if !IsValidUrl("https://github.com/esimov/ghtface/") {
		t.Errorf("A valid URL should have been accepted")
	}
}

func TestUtils_ShouldRejectInvalidUrl(t *testing.T) {
	for _, uri := range []string{"", "frame.jpg", "/tmp/frame.jpg", "://missing-scheme"} {
		if IsValidUrl(uri) {
			t.Errorf("%q should have been rejected as URL", uri)
		}
	}
}

func TestUtils_FormatTime(t *testing.T) {
	if got := FormatTime(1500 * time.Millisecond); got != "1.50s" {
		t.Errorf("Expected 1.50s, got %v", got)
	}
	if got := FormatTime(90 * time.Second); got != "1m 30.00s" {
		t.Errorf("Expected 1m 30.00s, got %v", got)
	}
}

func TestUtils_MinMaxAbs(t *testing.T) {
	if Min(3, 7) != 3 || Min(7, 3) != 3 {
		t.Errorf("Min returned the wrong value")
	}
	if Max(3, 7) != 7 || Max(7, 3) != 7 {
		t.Errorf("Max returned the wrong value")
	}
	if Abs(-5) != 5 || Abs(5) != 5 {
		t.Errorf("Abs returned the wrong value")
	}
}
