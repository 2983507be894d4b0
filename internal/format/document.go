package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Thread is a group of records sharing a conversation id.
type Thread struct {
	ThreadID string   `json:"thread_id"`
	Messages []Record `json:"messages"`
}

// Classification is the incident metadata assigned to one thread.
type Classification struct {
	ThreadID       string `json:"thread_id"`
	IncidentNumber string `json:"Incident Number"`
	RootCause      string `json:"Root Cause"`
	Type           string `json:"Type"`
	Severity       string `json:"Severity"`
	Error          string `json:"error,omitempty"`
}

// DecodeRecords extracts the message records of an export document.
//
// The document is either an object holding the records under "messages"
// (the Teams export shape) or a bare array of records. A document without
// "messages" and a whitespace-only document both yield zero records.
// Duplicate object keys are collapsed, last value winning, see
// Record.Canonical.
func DecodeRecords(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}
	if err := checkDocument(data, gjson.ValidBytes); err != nil {
		return nil, err
	}
	root := gjson.ParseBytes(Record{raw: data}.Canonical().raw)
	items := root
	switch {
	case root.IsArray():
	case root.IsObject():
		items = root.Get("messages")
		if !items.Exists() || items.Type == gjson.Null {
			return []Record{}, nil
		}
		if !items.IsArray() {
			return nil, fmt.Errorf("%w: \"messages\" is not an array", ErrMalformedDocument)
		}
	default:
		return nil, fmt.Errorf("%w: top level must be an object or an array", ErrMalformedDocument)
	}

	records := []Record{}
	items.ForEach(func(_, value gjson.Result) bool {
		records = append(records, Record{raw: []byte(value.Raw)})
		return true
	})
	return records, nil
}

// DecodeThreads parses a threads document: a JSON array of threads, or an
// object holding them under "threads".
func DecodeThreads(data []byte) ([]Thread, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Thread{}, nil
	}
	if err := checkDocument(trimmed, json.Valid); err != nil {
		return nil, err
	}
	var threads []Thread
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &threads); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	case '{':
		var doc struct {
			Threads []Thread `json:"threads"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		threads = doc.Threads
	default:
		return nil, fmt.Errorf("%w: top level must be an object or an array", ErrMalformedDocument)
	}
	if threads == nil {
		threads = []Thread{}
	}
	for i := range threads {
		if threads[i].Messages == nil {
			threads[i].Messages = []Record{}
		}
	}
	return threads, nil
}

// checkDocument rejects invalid JSON and invalid UTF-8. Strings are copied
// into the output verbatim, so a bad byte would make the output invalid too.
func checkDocument(data []byte, valid func([]byte) bool) error {
	if !valid(data) {
		return ErrMalformedDocument
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: invalid UTF-8", ErrMalformedDocument)
	}
	return nil
}

// MarshalDocument encodes v with two-space indentation and a trailing
// newline. HTML characters are written as-is.
func MarshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalCompact encodes v on a single line without HTML escaping.
func MarshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
