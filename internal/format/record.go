package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Paths into a Teams message record (gjson syntax).
const (
	PathID             = "id"
	PathConversation   = "conversationIdentity"
	PathConversationID = "conversationIdentity.conversationId"
	PathCreated        = "createdDateTime"
	PathFrom           = "from"
	PathUser           = "from.user"
	PathDisplayName    = "from.user.displayName"
	PathContent        = "body.content"
	PathContentType    = "body.contentType"
	PathMentions       = "mentions"
)

// Sentinel errors for document parsing.
var (
	ErrMalformedDocument = errors.New("malformed JSON document")
	ErrNotObject         = errors.New("record is not a JSON object")
)

// Record is a single exported chat message. The raw JSON is kept as-is so
// fields this package does not know about, and their key order, survive the
// round trip. Every accessor treats an absent or mistyped field as missing.
type Record struct {
	raw []byte
}

// NewRecord wraps raw JSON. The slice is copied.
func NewRecord(raw []byte) Record {
	return Record{raw: append([]byte(nil), raw...)}
}

// Raw returns the record bytes. Callers must not modify them.
func (r Record) Raw() []byte {
	return r.raw
}

func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	r.raw = append([]byte(nil), data...)
	return nil
}

// IsObject reports whether the record is a JSON object.
func (r Record) IsObject() bool {
	return gjson.ParseBytes(r.raw).IsObject()
}

// Get returns the value at path.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// String returns the value at path when it is a JSON string.
func (r Record) String(path string) (string, bool) {
	v := r.Get(path)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

func (r Record) ID() string {
	v := r.Get(PathID)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}

// ConversationID returns the grouping key. Empty strings count as missing.
func (r Record) ConversationID() (string, bool) {
	id, ok := r.String(PathConversationID)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Created parses createdDateTime. ok is false when the field is absent or
// not an RFC 3339 timestamp.
func (r Record) Created() (time.Time, bool) {
	raw, ok := r.String(PathCreated)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (r Record) DisplayName() (string, bool) {
	return r.String(PathDisplayName)
}

func (r Record) Content() (string, bool) {
	return r.String(PathContent)
}

// With returns a copy of the record with path set to the string value.
// Missing intermediate objects are created.
func (r Record) With(path, value string) (Record, error) {
	encoded, err := encodeString(value)
	if err != nil {
		return r, err
	}
	return r.WithRaw(path, encoded)
}

// WithRaw returns a copy of the record with path set to raw JSON.
func (r Record) WithRaw(path string, raw []byte) (Record, error) {
	if !r.IsObject() {
		return r, ErrNotObject
	}
	out, err := sjson.SetRawBytes(r.raw, path, raw)
	if err != nil {
		return r, fmt.Errorf("set %s: %w", path, err)
	}
	return Record{raw: out}, nil
}

// Without returns a copy of the record with path removed. Removing a path
// that does not exist is not an error.
func (r Record) Without(path string) (Record, error) {
	if !r.IsObject() {
		return r, ErrNotObject
	}
	if !r.Get(path).Exists() {
		return r, nil
	}
	out, err := sjson.DeleteBytes(r.raw, path)
	if err != nil {
		return r, fmt.Errorf("delete %s: %w", path, err)
	}
	return Record{raw: out}, nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
