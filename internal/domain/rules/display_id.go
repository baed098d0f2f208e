package rules

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DisplayIDPrefix = "MAT"
	// FirstDisplayNumber is the number carried by the first profile ever created.
	FirstDisplayNumber = 10001
)

func FormatDisplayID(n int64) string {
	return fmt.Sprintf("%s%06d", DisplayIDPrefix, n)
}

func ParseDisplayID(raw string) (int64, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if !strings.HasPrefix(raw, DisplayIDPrefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(raw, DisplayIDPrefix), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func IsDisplayID(raw string) bool {
	_, ok := ParseDisplayID(raw)
	return ok
}
