package validate_test

import (
	"testing"

	"storefront/internal/validate"
)

func TestID(t *testing.T) {
	for in, want := range map[string]int64{"1": 1, " 42 ": 42, "900719925474099": 900719925474099} {
		if got, ok := validate.ID(in); !ok || got != want {
			t.Errorf("ID(%q) = %d,%v", in, got, ok)
		}
	}
	for _, in := range []string{"", "0", "-3", "abc", "1e3", "12345678901234567890"} {
		if _, ok := validate.ID(in); ok {
			t.Errorf("ID(%q) should be rejected", in)
		}
	}
}

func TestSplitPathID(t *testing.T) {
	cases := []struct {
		raw  string
		path string
		id   int64
		ok   bool
	}{
		{"apparel/shoes/2/", "apparel/shoes", 2, true},
		{"/apparel/1", "apparel", 1, true},
		{"stale-path/3", "stale-path", 3, true},
		{"/5/", "", 0, false},
		{"apparel", "", 0, false},
		{"apparel/x/", "", 0, false},
		{"", "", 0, false},
	}
	for _, tc := range cases {
		path, id, ok := validate.SplitPathID(tc.raw)
		if path != tc.path || id != tc.id || ok != tc.ok {
			t.Errorf("SplitPathID(%q) = %q,%d,%v", tc.raw, path, id, ok)
		}
	}
}
