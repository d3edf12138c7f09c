package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq/hstore"
)

// AttrMap maps attribute id to attribute value id, both as decimal strings.
// SQLite stores it as a JSON object, PostgreSQL as hstore; Scan accepts both.
// Text that decodes as neither scans as an empty map.
type AttrMap map[string]string

func (m *AttrMap) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*m = AttrMap{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("attrmap: unsupported source %T", src)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*m = AttrMap{}
		return nil
	}
	if strings.HasPrefix(s, "{") {
		raw := map[string]any{}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			*m = AttrMap{}
			return nil
		}
		out := make(AttrMap, len(raw))
		for k, v := range raw {
			switch x := v.(type) {
			case string:
				out[k] = x
			case float64:
				out[k] = fmt.Sprintf("%.0f", x)
			}
		}
		*m = out
		return nil
	}
	var h hstore.Hstore
	if err := h.Scan([]byte(s)); err != nil {
		*m = AttrMap{}
		return nil
	}
	out := make(AttrMap, len(h.Map))
	for k, v := range h.Map {
		if k != "" && v.Valid && v.String != "" {
			out[k] = v.String
		}
	}
	*m = out
	return nil
}
