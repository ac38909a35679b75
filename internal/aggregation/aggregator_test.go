package aggregation

import "testing"

func TestAggregatedField_Merge(t *testing.T) {
	a := NewAggregatedField(10)
	b := NewAggregatedField(20)
	a.AddValue(30)

	a.Merge(b)

	if a.Count != 3 {
		t.Errorf("expected count 3, got %d", a.Count)
	}
	if a.Sum != 60 {
		t.Errorf("expected sum 60, got %v", a.Sum)
	}
	if a.Min != 10 {
		t.Errorf("expected min 10, got %v", a.Min)
	}
	if a.Max != 30 {
		t.Errorf("expected max 30, got %v", a.Max)
	}
}

func TestAggregatedField_MergeIsAssociative(t *testing.T) {
	a := NewAggregatedField(1)
	b := NewAggregatedField(2)
	c := NewAggregatedField(3)

	ab := *a
	ab.Merge(b)
	ab.Merge(c)

	bc := *b
	bc.Merge(c)
	a2 := *a
	a2.Merge(&bc)

	if ab.Sum != a2.Sum || ab.Count != a2.Count {
		t.Errorf("expected merge to be associative, got %+v vs %+v", ab, a2)
	}
}

func TestAggregatedField_MergeEmptyIsNoop(t *testing.T) {
	a := NewAggregatedField(5)
	empty := &AggregatedField{}

	a.Merge(empty)

	if a.Count != 1 || a.Sum != 5 {
		t.Errorf("expected merge of empty field to be a no-op, got %+v", a)
	}
}

func TestAggregatedField_Variance(t *testing.T) {
	a := NewAggregatedField(2)
	a.AddValue(4)
	a.AddValue(4)
	a.AddValue(4)
	a.AddValue(5)
	a.AddValue(5)
	a.AddValue(7)
	a.AddValue(9)

	if got := a.Variance(); got < 3.9 || got > 4.1 {
		t.Errorf("expected variance close to 4, got %v", got)
	}
}

func TestStatsAggregator(t *testing.T) {
	agg, ok := NewAggregator("stats")
	if !ok {
		t.Fatal("expected stats aggregator to be registered")
	}
	agg.Add(1)
	agg.Add(2)
	agg.Add(3)

	if got := agg.Result(); got != 6 {
		t.Errorf("expected sum 6, got %v", got)
	}

	stats := agg.(*statsAggregator).Stats()
	if stats.Count != 3 {
		t.Errorf("expected count 3, got %d", stats.Count)
	}
}

func TestStatsAggregator_Combine(t *testing.T) {
	a, _ := NewAggregator("stats")
	b, _ := NewAggregator("stats")
	a.Add(1)
	b.Add(2)
	b.Add(3)

	a.Combine(b)

	stats := a.(*statsAggregator).Stats()
	if stats.Count != 3 {
		t.Errorf("expected count 3, got %d", stats.Count)
	}
	if stats.Sum != 6 {
		t.Errorf("expected sum 6, got %v", stats.Sum)
	}
}
