package status

import "testing"

func TestRoundTrip(t *testing.T) {
	// 0..5 必须双向一致
	for n := 0; n <= 5; n++ {
		s := FromOrdinal(n)
		if got := s.Ordinal(); got != n {
			t.Errorf("Ordinal(FromOrdinal(%d)) = %d, want %d", n, got, n)
		}
	}
}

func TestFromOrdinalUnknown(t *testing.T) {
	// 未知状态码回退为 Reported，不允许panic
	for _, n := range []int{-1, 6, 7, 100, -100} {
		if got := FromOrdinal(n); got != StatusReported {
			t.Errorf("FromOrdinal(%d) = %q, want %q", n, got, StatusReported)
		}
	}
}

func TestParseOrdinalStrict(t *testing.T) {
	if _, err := ParseOrdinal(3); err != nil {
		t.Fatalf("ParseOrdinal(3) returned error: %v", err)
	}

	for _, n := range []int{-1, 6, 42} {
		s, err := ParseOrdinal(n)
		if err == nil {
			t.Errorf("ParseOrdinal(%d) = %q, want error", n, s)
		}
	}
}

func TestOrdinalValues(t *testing.T) {
	want := map[IssueStatus]int{
		StatusReported:    0,
		StatusUnderReview: 1,
		StatusInProgress:  2,
		StatusResolved:    3,
		StatusRejected:    4,
		StatusConfirmed:   5,
	}
	for s, n := range want {
		if got := s.Ordinal(); got != n {
			t.Errorf("%q.Ordinal() = %d, want %d", s, got, n)
		}
	}

	// 未定义状态名回退为 0
	if got := IssueStatus("Bogus").Ordinal(); got != 0 {
		t.Errorf("unknown status ordinal = %d, want 0", got)
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range All() {
		want := s == StatusRejected || s == StatusConfirmed
		if got := s.Terminal(); got != want {
			t.Errorf("%q.Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	if s, err := Parse("Under Review"); err != nil || s != StatusUnderReview {
		t.Errorf("Parse(\"Under Review\") = %q, %v", s, err)
	}
	if _, err := Parse("under review"); err == nil {
		t.Error("Parse is case sensitive, expected error for lowercase input")
	}
}
