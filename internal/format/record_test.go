package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const teamsRecord = `{
  "id": "1700000000001",
  "createdDateTime": "2024-03-01T10:15:00.123Z",
  "conversationIdentity": {"conversationId": "19:abc@thread.v2"},
  "from": {"user": {"id": "u-1", "displayName": "Alice"}},
  "body": {"contentType": "html", "content": "<p>disk full on db01</p>"}
}`

func TestRecordAccessors(t *testing.T) {
	rec := NewRecord([]byte(teamsRecord))

	require.True(t, rec.IsObject())
	require.Equal(t, "1700000000001", rec.ID())

	id, ok := rec.ConversationID()
	require.True(t, ok)
	require.Equal(t, "19:abc@thread.v2", id)

	name, ok := rec.DisplayName()
	require.True(t, ok)
	require.Equal(t, "Alice", name)

	content, ok := rec.Content()
	require.True(t, ok)
	require.Equal(t, "<p>disk full on db01</p>", content)

	created, ok := rec.Created()
	require.True(t, ok)
	require.Equal(t, 2024, created.Year())
	require.Equal(t, 123000000, created.Nanosecond())
}

func TestRecordMissingFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"null key", `{"conversationIdentity": {"conversationId": null}}`},
		{"empty key", `{"conversationIdentity": {"conversationId": ""}}`},
		{"numeric key", `{"conversationIdentity": {"conversationId": 42}}`},
		{"identity not object", `{"conversationIdentity": "x"}`},
		{"not an object", `"just a string"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := NewRecord([]byte(tc.raw))
			if _, ok := rec.ConversationID(); ok {
				t.Fatalf("expected no conversation id for %s", tc.raw)
			}
			if _, ok := rec.Created(); ok {
				t.Fatalf("expected no created time for %s", tc.raw)
			}
		})
	}
}

func TestRecordCreatedUnparsable(t *testing.T) {
	rec := NewRecord([]byte(`{"createdDateTime": "yesterday"}`))
	if _, ok := rec.Created(); ok {
		t.Fatalf("expected unparsable timestamp to be reported missing")
	}
}

func TestRecordWithCreatesPath(t *testing.T) {
	rec := NewRecord([]byte(`{"id":"m1"}`))
	out, err := rec.With(PathDisplayName, "XXXX")
	require.NoError(t, err)

	name, ok := out.DisplayName()
	require.True(t, ok)
	require.Equal(t, "XXXX", name)
	require.Equal(t, "m1", out.ID())

	// The original is untouched.
	_, ok = rec.DisplayName()
	require.False(t, ok)
}

func TestRecordWithKeepsMarkupUnescaped(t *testing.T) {
	rec := NewRecord([]byte(`{}`))
	out, err := rec.With(PathContent, "a < b & c")
	require.NoError(t, err)
	require.Contains(t, string(out.Raw()), `"a < b & c"`)
	require.True(t, json.Valid(out.Raw()))
}

func TestRecordWithout(t *testing.T) {
	rec := NewRecord([]byte(teamsRecord))
	out, err := rec.Without(PathConversation)
	require.NoError(t, err)
	require.False(t, out.Get(PathConversation).Exists())
	require.True(t, json.Valid(out.Raw()))
	require.Equal(t, "1700000000001", out.ID())

	again, err := out.Without(PathConversation)
	require.NoError(t, err)
	require.Equal(t, out.Raw(), again.Raw())
}

func TestRecordEditNonObject(t *testing.T) {
	rec := NewRecord([]byte(`[1,2]`))
	if _, err := rec.With(PathDisplayName, "XXXX"); err == nil {
		t.Fatalf("expected error editing a non-object record")
	}
	if _, err := rec.Without(PathConversation); err == nil {
		t.Fatalf("expected error editing a non-object record")
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"b":1,"a":2}`), &rec))
	out, err := json.Marshal(rec)
	require.NoError(t, err)
	require.Equal(t, `{"b":1,"a":2}`, string(out))

	empty, err := json.Marshal(Record{})
	require.NoError(t, err)
	require.Equal(t, "null", string(empty))
}
