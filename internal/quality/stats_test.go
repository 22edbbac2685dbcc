package quality

import "testing"

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Min != nil || s.Max != nil || s.Mean != nil || s.Median != nil || s.Mode != nil {
		t.Errorf("expected all nil fields for empty input, got %+v", s)
	}
}

func TestSummarize_SingleValue(t *testing.T) {
	s := Summarize([]float64{7})
	for name, got := range map[string]*float64{
		"min": s.Min, "max": s.Max, "mean": s.Mean, "median": s.Median, "mode": s.Mode,
	} {
		if got == nil || *got != 7 {
			t.Errorf("%s: expected 7, got %v", name, got)
		}
	}
}

func TestSummarize_MeanRoundsHalfAwayFromZero(t *testing.T) {
	s := Summarize([]float64{1, 2})
	if *s.Mean != 2 {
		t.Errorf("mean of [1,2]: expected 2, got %v", *s.Mean)
	}
	if *s.Median != 2 {
		t.Errorf("median of [1,2]: expected 2, got %v", *s.Median)
	}
}

func TestSummarize_MedianEvenLength(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	if *s.Median != 3 {
		t.Errorf("median of [1,2,3,4]: expected 3 (2.5 rounded up), got %v", *s.Median)
	}
	if *s.Mean != 3 {
		t.Errorf("mean of [1,2,3,4]: expected 3 (2.5 rounded up), got %v", *s.Mean)
	}
}

func TestSummarize_MinMaxExact(t *testing.T) {
	s := Summarize([]float64{12.25, 3.5, 99.75})
	if *s.Min != 3.5 || *s.Max != 99.75 {
		t.Errorf("min/max not exact: %v / %v", *s.Min, *s.Max)
	}
}

func TestSummarize_ModeTieBreaksSmallest(t *testing.T) {
	s := Summarize([]float64{2, 1})
	if *s.Mode != 1 {
		t.Errorf("mode of tied [2,1]: expected 1, got %v", *s.Mode)
	}

	s = Summarize([]float64{5, 5, 3, 3, 9})
	if *s.Mode != 3 {
		t.Errorf("mode of [5,5,3,3,9]: expected 3, got %v", *s.Mode)
	}
}

func TestSummarize_Mode(t *testing.T) {
	s := Summarize([]float64{4, 4, 4, 1, 9})
	if *s.Mode != 4 {
		t.Errorf("mode: expected 4, got %v", *s.Mode)
	}
}

func TestSummarize_OrderingInvariant(t *testing.T) {
	samples := [][]float64{
		{1, 2, 3},
		{10},
		{0.5, 0.5, 8, 12.5},
		{3, 1, 4, 1, 5, 9, 2, 6},
	}
	for _, data := range samples {
		s := Summarize(data)
		if *s.Min > *s.Median || *s.Median > *s.Max {
			t.Errorf("min<=median<=max violated for %v: %+v", data, s)
		}
	}
}

func TestSummarizeInts(t *testing.T) {
	s := SummarizeInts([]int{2, 2, 7})
	if *s.Min != 2 || *s.Max != 7 || *s.Mode != 2 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if *s.Mean != 4 { // 11/3 ≈ 3.67 → 4
		t.Errorf("mean: expected 4, got %v", *s.Mean)
	}
}
