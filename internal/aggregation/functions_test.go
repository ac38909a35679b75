package aggregation

import "testing"

func TestSumAggregator(t *testing.T) {
	a, ok := NewAggregator("sum")
	if !ok {
		t.Fatal("expected sum aggregator to be registered")
	}
	a.Add(1)
	a.Add(2)
	a.Add(3)
	if got := a.Result(); got != 6 {
		t.Errorf("expected 6, got %v", got)
	}
}

func TestSumAggregator_Combine(t *testing.T) {
	a, _ := NewAggregator("sum")
	b, _ := NewAggregator("sum")
	a.Add(1)
	a.Add(2)
	b.Add(10)
	a.Combine(b)
	if got := a.Result(); got != 13 {
		t.Errorf("expected 13, got %v", got)
	}
}

func TestMinMaxAggregator(t *testing.T) {
	min, _ := NewAggregator("min")
	max, _ := NewAggregator("max")
	for _, v := range []float64{5, -2, 9, 0} {
		min.Add(v)
		max.Add(v)
	}
	if min.Result() != -2 {
		t.Errorf("expected min -2, got %v", min.Result())
	}
	if max.Result() != 9 {
		t.Errorf("expected max 9, got %v", max.Result())
	}
}

func TestMinAggregator_CombineAssociative(t *testing.T) {
	a, _ := NewAggregator("min")
	b, _ := NewAggregator("min")
	c, _ := NewAggregator("min")
	a.Add(3)
	b.Add(1)
	c.Add(2)

	a.Combine(b)
	a.Combine(c)

	direct, _ := NewAggregator("min")
	direct.Add(3)
	direct.Add(1)
	direct.Add(2)

	if a.Result() != direct.Result() {
		t.Errorf("expected combine order to not matter, got %v vs %v", a.Result(), direct.Result())
	}
}

func TestCountAggregator(t *testing.T) {
	a, _ := NewAggregator("count")
	a.Add(100)
	a.Add(-5)
	a.Add(0)
	if a.Result() != 3 {
		t.Errorf("expected count 3, got %v", a.Result())
	}
}

func TestFirstLastAggregator(t *testing.T) {
	first, _ := NewAggregator("first")
	last, _ := NewAggregator("last")
	for _, v := range []float64{1, 2, 3} {
		first.Add(v)
		last.Add(v)
	}
	if first.Result() != 1 {
		t.Errorf("expected first 1, got %v", first.Result())
	}
	if last.Result() != 3 {
		t.Errorf("expected last 3, got %v", last.Result())
	}
}

func TestMeanAggregator_WeightedCombine(t *testing.T) {
	a, _ := NewAggregator("mean")
	b, _ := NewAggregator("mean")
	a.Add(10)
	a.Add(20)
	b.Add(0)
	a.Combine(b)

	if got := a.Result(); got != 10 {
		t.Errorf("expected weighted mean 10, got %v", got)
	}
}

func TestReset(t *testing.T) {
	a, _ := NewAggregator("sum")
	a.Add(5)
	a.Reset()
	if a.Result() != 0 {
		t.Errorf("expected 0 after reset, got %v", a.Result())
	}
}

func TestUnknownAggregator(t *testing.T) {
	if _, ok := NewAggregator("median"); ok {
		t.Error("expected unregistered aggregator name to return ok=false")
	}
}

func TestRegisterAggregator(t *testing.T) {
	RegisterAggregator("double-sum", func() Aggregator {
		return &sumAggregator{}
	})
	a, ok := NewAggregator("double-sum")
	if !ok {
		t.Fatal("expected custom aggregator to be registered")
	}
	a.Add(4)
	if a.Result() != 4 {
		t.Errorf("expected 4, got %v", a.Result())
	}
}
