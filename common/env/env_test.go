package env

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("AIPROBE_TEST_STRING", "value")
	if got := String("AIPROBE_TEST_STRING", "fallback"); got != "value" {
		t.Fatalf("String = %q, want %q", got, "value")
	}
	if got := String("AIPROBE_TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("String missing = %q, want fallback", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("AIPROBE_TEST_INT", "42")
	if got := Int("AIPROBE_TEST_INT", 7); got != 42 {
		t.Fatalf("Int = %d, want 42", got)
	}
	t.Setenv("AIPROBE_TEST_INT", "not-a-number")
	if got := Int("AIPROBE_TEST_INT", 7); got != 7 {
		t.Fatalf("Int invalid = %d, want default 7", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"true": true, "1": true, "yes": true, "on": true,
		"false": false, "0": false, "no": false, "off": false,
	}
	for input, want := range cases {
		t.Setenv("AIPROBE_TEST_BOOL", input)
		if got := Bool("AIPROBE_TEST_BOOL", !want); got != want {
			t.Fatalf("Bool(%q) = %v, want %v", input, got, want)
		}
	}
	t.Setenv("AIPROBE_TEST_BOOL", "maybe")
	if got := Bool("AIPROBE_TEST_BOOL", true); got != true {
		t.Fatalf("Bool invalid should return default")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("AIPROBE_TEST_DURATION", "30")
	if got := Duration("AIPROBE_TEST_DURATION", time.Second); got != 30*time.Second {
		t.Fatalf("Duration bare int = %v, want 30s", got)
	}
	t.Setenv("AIPROBE_TEST_DURATION", "2m")
	if got := Duration("AIPROBE_TEST_DURATION", time.Second); got != 2*time.Minute {
		t.Fatalf("Duration = %v, want 2m", got)
	}
	t.Setenv("AIPROBE_TEST_DURATION", "junk")
	if got := Duration("AIPROBE_TEST_DURATION", 5*time.Second); got != 5*time.Second {
		t.Fatalf("Duration invalid = %v, want default", got)
	}
}
