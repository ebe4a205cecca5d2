package utils

import "testing"

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	l := NewLogger("bogus", "json")
	if l.entry.Logger.Level.String() != "info" {
		t.Fatalf("expected info level, got %s", l.entry.Logger.Level.String())
	}
}

func TestWithField_DoesNotMutateParent(t *testing.T) {
	base := NewLogger("info", "json")
	child := base.WithField("request_id", "abc")

	if _, ok := base.entry.Data["request_id"]; ok {
		t.Fatalf("parent logger was mutated by WithField")
	}
	if _, ok := child.entry.Data["request_id"]; !ok {
		t.Fatalf("child logger missing request_id field")
	}
}

func TestWithFields_MergesAllKeys(t *testing.T) {
	base := NewLogger("info", "text")
	child := base.WithFields(map[string]interface{}{"a": 1, "b": 2})

	if len(child.entry.Data) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(child.entry.Data))
	}
}

func TestSetDefaultLogger_ReplacesPackageDefault(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefaultLogger(original) })

	replacement := NewLogger("debug", "json")
	SetDefaultLogger(replacement)
	if Default() != replacement {
		t.Fatalf("Default() did not return the replacement logger")
	}
}
