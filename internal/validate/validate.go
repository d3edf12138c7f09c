package validate

import (
	"strconv"
	"strings"
)

// ID validates a numeric resource identifier (category/brand/product ids).
func ID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 18 {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// SplitPathID splits "<path>/<id>" (surrounding slashes ignored) into the
// path and the trailing numeric id.
func SplitPathID(raw string) (string, int64, bool) {
	raw = strings.Trim(raw, "/")
	i := strings.LastIndex(raw, "/")
	if i < 0 {
		return "", 0, false
	}
	id, ok := ID(raw[i+1:])
	if !ok {
		return "", 0, false
	}
	return raw[:i], id, true
}
