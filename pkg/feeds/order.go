package feeds

import "strings"

// CompareNumeric orders decimal ids (e.g. snowflake ids) of arbitrary size.
func CompareNumeric(a, b string) int {
	return compareDigits(strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0"))
}

// CompareBase36 orders reddit style fullnames ("t3_abc12") by their base36 value.
func CompareBase36(a, b string) int {
	return compareDigits(base36Digits(a), base36Digits(b))
}

// CompareLexical orders ids whose byte order already matches feed order.
func CompareLexical(a, b string) int {
	return strings.Compare(a, b)
}

func base36Digits(id string) string {
	if idx := strings.IndexByte(id, '_'); idx >= 0 {
		id = id[idx+1:]
	}
	return strings.TrimLeft(strings.ToLower(id), "0")
}

// compareDigits compares positional digit strings without leading zeros; '0'-'9' sort before 'a'-'z'.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
