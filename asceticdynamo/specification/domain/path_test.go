package specification

import (
	"testing"
)

func TestParsePath(t *testing.T) {
	n, err := ParsePath("innerObject.items[0].price")
	if err != nil {
		t.Fatalf("ParsePath failed: %v", err)
	}
	path := ExtractFieldPath(n)
	expected := []string{"innerObject", "items[0]", "price"}
	if len(path) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, path)
	}
	for i := range expected {
		if path[i] != expected[i] {
			t.Errorf("Expected segment %d to be %s, got %s", i, expected[i], path[i])
		}
	}
	if !IsSubjectField(n) {
		t.Error("Expected a field of the record")
	}
}

func TestParsePathRejectsMalformed(t *testing.T) {
	for _, path := range []string{"", "a..b", ".a", "a.", "a[x]", "a[]", "[0]", "a[1", "a[1]b"} {
		if _, err := ParsePath(path); err == nil {
			t.Errorf("Expected %q to be rejected", path)
		}
	}
}

func TestPathPanicsOnMalformed(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	Path("a..b")
}

func TestCapturedRoot(t *testing.T) {
	root := Captured("req", struct{ Id string }{"x"})
	n := Field(root, "Id")
	if IsSubjectField(n) {
		t.Error("Expected a captured member, not a record attribute")
	}
	if RootOf(n).Name() != "req" {
		t.Errorf("Expected root req, got %s", RootOf(n).Name())
	}
}
