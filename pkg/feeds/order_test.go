package feeds

import "testing"

func TestCompareNumeric(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"10", "9", 1},
		{"0010", "10", 0},
		{"1234567890123456789012", "999", 1},
	}
	for _, tc := range cases {
		if got := sign(CompareNumeric(tc.a, tc.b)); got != tc.want {
			t.Fatalf("CompareNumeric(%q,%q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompareBase36(t *testing.T) {
	if CompareBase36("t3_zz", "t3_100") >= 0 {
		t.Fatalf("zz should be older than 100 in base36")
	}
	if CompareBase36("t3_ABC", "t3_abc") != 0 {
		t.Fatalf("base36 comparison should ignore case")
	}
	if CompareBase36("t3_a", "t3_9") <= 0 {
		t.Fatalf("a should be newer than 9")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
