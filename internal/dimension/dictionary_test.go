package dimension

import "testing"

func TestNewDictionarySortsAndReservesNull(t *testing.T) {
	d := NewDictionary([]string{"b", "a", "c"}, true)
	if d.Len() != 4 {
		t.Fatalf("expected 4 entries (null + 3), got %d", d.Len())
	}
	if d.ValueAt(0) != "" {
		t.Errorf("expected null slot at position 0, got %q", d.ValueAt(0))
	}
	if d.ValueAt(1) != "a" || d.ValueAt(2) != "b" || d.ValueAt(3) != "c" {
		t.Errorf("expected sorted order a,b,c after null, got %v", d.Values())
	}
}

func TestNewDictionaryWithoutNull(t *testing.T) {
	d := NewDictionary([]string{"z", "a"}, false)
	if d.HasNull() {
		t.Error("expected no null slot")
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", d.Len())
	}
	if d.ValueAt(0) != "a" {
		t.Errorf("expected 'a' first, got %q", d.ValueAt(0))
	}
}

func TestIDForLinearAndMapPaths(t *testing.T) {
	small := NewDictionary([]string{"x", "y"}, false)
	id, ok := small.IDFor("y")
	if !ok || id != 1 {
		t.Errorf("expected y at id 1, got id=%d ok=%v", id, ok)
	}

	large := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		large = append(large, string(rune('a'+i%26))+string(rune('A'+i)))
	}
	d := NewDictionary(large, false)
	if d.lookup == nil {
		t.Error("expected dictionary to upgrade to map lookup above threshold")
	}
	id, ok = d.IDFor(large[5])
	if !ok {
		t.Fatal("expected to find a known value")
	}
	if d.ValueAt(id) != large[5] {
		t.Errorf("expected round trip through IDFor/ValueAt, got %q", d.ValueAt(id))
	}
}

func TestIDForMissingValue(t *testing.T) {
	d := NewDictionary([]string{"a"}, false)
	if _, ok := d.IDFor("not-present"); ok {
		t.Error("expected IDFor to report not-found for a missing value")
	}
}

func TestNullIDAndNumRealValues(t *testing.T) {
	withNull := NewDictionary([]string{"a", "b"}, true)
	id, ok := withNull.NullID()
	if !ok || id != 0 {
		t.Errorf("expected null id 0, got id=%d ok=%v", id, ok)
	}
	if withNull.NumRealValues() != 2 {
		t.Errorf("expected 2 real values, got %d", withNull.NumRealValues())
	}

	withoutNull := NewDictionary([]string{"a"}, false)
	if _, ok := withoutNull.NullID(); ok {
		t.Error("expected no null id when hasNull is false")
	}
}
