package quality

import (
	"errors"
	"testing"
)

func TestPercentTruncates(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{1, 4, 25},
		{3, 4, 75},
		{2, 3, 66},
		{1, 3, 33},
		{0, 4, 0},
		{4, 4, 100},
		{5, 0, 0},
		{0, 0, 0},
		{5, 4, 125},
	}
	for _, tc := range cases {
		if got := Percent(tc.completed, tc.total); got != tc.want {
			t.Fatalf("Percent(%d, %d) = %d, want %d", tc.completed, tc.total, got, tc.want)
		}
	}
}

func TestCountCompletedIgnoresSkip(t *testing.T) {
	results := []ExecutionItemResult{
		{Status: ItemSkip},
		{Status: ItemSkip},
		{Status: ItemSkip},
		{Status: ItemSkip},
	}
	if got := CountCompleted(results); got != 0 {
		t.Fatalf("CountCompleted() = %d, want 0", got)
	}

	results[0].Status = ItemOK
	results[1].Status = ItemNG
	if got := CountCompleted(results); got != 2 {
		t.Fatalf("CountCompleted() = %d, want 2", got)
	}
}

func TestProjectProgressIsMaximum(t *testing.T) {
	if got := ProjectProgress([]int{20, 80, 50}); got != 80 {
		t.Fatalf("ProjectProgress() = %d, want 80", got)
	}
	if got := ProjectProgress(nil); got != 0 {
		t.Fatalf("ProjectProgress(nil) = %d, want 0", got)
	}
	if got := ProjectProgress([]int{0, 0}); got != 0 {
		t.Fatalf("ProjectProgress(zeros) = %d", got)
	}
}

func TestResolveItemOrders(t *testing.T) {
	seven := 7
	got := ResolveItemOrders([]*int{nil, &seven, nil})
	if len(got) != 3 || got[0] != 0 || got[1] != 7 || got[2] != 2 {
		t.Fatalf("ResolveItemOrders() = %v", got)
	}
}

func TestDuplicateCheckItem(t *testing.T) {
	if id, ok := DuplicateCheckItem([]uint64{3, 1, 3}); !ok || id != 3 {
		t.Fatalf("DuplicateCheckItem() = %d,%v", id, ok)
	}
	if _, ok := DuplicateCheckItem([]uint64{1, 2, 3}); ok {
		t.Fatalf("DuplicateCheckItem() reported a duplicate")
	}
}

func TestValidateCheckItem(t *testing.T) {
	lo, hi := 10.0, 1.0
	err := ValidateCheckItem(CheckItem{MinValue: &lo, MaxValue: &hi})
	if !errors.Is(err, ErrBoundsInverted) {
		t.Fatalf("ValidateCheckItem() error = %v", err)
	}

	places := 11
	err = ValidateCheckItem(CheckItem{DecimalPlaces: &places})
	if !errors.Is(err, ErrDecimalPlaces) {
		t.Fatalf("ValidateCheckItem() error = %v", err)
	}
}

func TestParseItemStatus(t *testing.T) {
	got, err := ParseItemStatus("")
	if err != nil || got != ItemOK {
		t.Fatalf("ParseItemStatus(\"\") = %q, %v", got, err)
	}
	if _, err := ParseItemStatus("skip"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("ParseItemStatus(skip) error = %v", err)
	}
}

func TestParseExecutionResultAllowsBlank(t *testing.T) {
	got, err := ParseExecutionResult("")
	if err != nil || got != ResultNone {
		t.Fatalf("ParseExecutionResult(\"\") = %q, %v", got, err)
	}
	if _, err := ParseExecutionResult("ok"); err == nil {
		t.Fatalf("ParseExecutionResult(ok) expected error")
	}
}
