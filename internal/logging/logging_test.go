package logging

import "testing"

func TestNewAcceptsKnownLevels(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"", "debug", "info", "WARN", "error"} {
		logger, err := New(level)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", level, err)
		}
		if logger == nil {
			t.Fatalf("New(%q) returned nil logger", level)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("chatty"); err == nil {
		t.Fatal("expected unknown log level to fail")
	}
}

func TestNewGormLoggerAcceptsNilLogger(t *testing.T) {
	t.Parallel()

	if NewGormLogger(nil) == nil {
		t.Fatal("expected gorm logger for nil zap logger")
	}
}
