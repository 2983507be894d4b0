package format

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// Canonical returns the record with duplicate object keys collapsed at every
// depth. The last value of a repeated key wins, as in encoding/json and most
// other decoders, and stays at the position of the key's first occurrence.
// gjson and sjson only see the first occurrence, so masking must run on the
// canonical form or a later duplicate would pass through untouched.
func (r Record) Canonical() Record {
	if len(r.raw) == 0 || !gjson.ValidBytes(r.raw) {
		return r
	}
	root := gjson.ParseBytes(r.raw)
	if !hasDuplicateKeys(root) {
		return r
	}
	var buf bytes.Buffer
	writeCanonical(&buf, root)
	return Record{raw: buf.Bytes()}
}

func hasDuplicateKeys(v gjson.Result) bool {
	found := false
	switch {
	case v.IsObject():
		seen := make(map[string]struct{})
		v.ForEach(func(key, value gjson.Result) bool {
			if _, dup := seen[key.Str]; dup {
				found = true
				return false
			}
			seen[key.Str] = struct{}{}
			found = hasDuplicateKeys(value)
			return !found
		})
	case v.IsArray():
		v.ForEach(func(_, value gjson.Result) bool {
			found = hasDuplicateKeys(value)
			return !found
		})
	}
	return found
}

func writeCanonical(buf *bytes.Buffer, v gjson.Result) {
	switch {
	case v.IsObject():
		var order []string
		rawKeys := make(map[string]string)
		values := make(map[string]gjson.Result)
		v.ForEach(func(key, value gjson.Result) bool {
			if _, ok := values[key.Str]; !ok {
				order = append(order, key.Str)
				rawKeys[key.Str] = key.Raw
			}
			values[key.Str] = value
			return true
		})
		buf.WriteByte('{')
		for i, k := range order {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(rawKeys[k])
			buf.WriteByte(':')
			writeCanonical(buf, values[k])
		}
		buf.WriteByte('}')
	case v.IsArray():
		buf.WriteByte('[')
		first := true
		v.ForEach(func(_, value gjson.Result) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeCanonical(buf, value)
			return true
		})
		buf.WriteByte(']')
	default:
		buf.WriteString(v.Raw)
	}
}
