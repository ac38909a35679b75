package adapter

import "testing"

type fakeRowIterator struct {
	rows []Row
	pos  int
}

func (f *fakeRowIterator) Next() bool {
	f.pos++
	return f.pos <= len(f.rows)
}

func (f *fakeRowIterator) Row() Row       { return f.rows[f.pos-1] }
func (f *fakeRowIterator) RowNum() int64  { return int64(f.pos - 1) }
func (f *fakeRowIterator) Close() error   { return nil }

type stringSelector struct{ v string }

func (s stringSelector) Values() []string { return []string{s.v} }

func TestReorderingRowIterator_MissingColumnsBecomeNil(t *testing.T) {
	inner := &fakeRowIterator{
		rows: []Row{
			{
				TimestampMillis: 10,
				Dims:            []DimensionSelector{stringSelector{"x"}},
				Metrics:         nil,
			},
		},
	}

	it := NewReorderingRowIterator(inner, []string{"a"}, []string{}, []string{"a", "b"}, []string{"m"})

	if !it.Next() {
		t.Fatal("expected a row")
	}
	row := it.Row()
	if len(row.Dims) != 2 {
		t.Fatalf("expected 2 dims, got %d", len(row.Dims))
	}
	if row.Dims[0].Values()[0] != "x" {
		t.Errorf("expected dim 0 value 'x', got %v", row.Dims[0].Values())
	}
	if row.Dims[1] != NilDimensionSelector {
		t.Errorf("expected dim 1 to be the nil selector")
	}
	if len(row.Metrics) != 1 || row.Metrics[0] != NilMetricSelector {
		t.Errorf("expected metric 0 to be the nil selector")
	}
}

func TestBuildPermutation(t *testing.T) {
	perm := buildPermutation([]string{"b", "a"}, []string{"a", "b", "c"})
	if perm[0] != 1 {
		t.Errorf("expected a -> index 1, got %d", perm[0])
	}
	if perm[1] != 0 {
		t.Errorf("expected b -> index 0, got %d", perm[1])
	}
	if perm[2] != -1 {
		t.Errorf("expected c -> -1, got %d", perm[2])
	}
}
