package format

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeRecords(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{"teams export", `{"messages":[{"id":"1"},{"id":"2"}]}`, 2},
		{"bare array", `[{"id":"1"}]`, 1},
		{"no messages key", `{"value":[{"id":"1"}]}`, 0},
		{"null messages", `{"messages":null}`, 0},
		{"empty messages", `{"messages":[]}`, 0},
		{"whitespace only", " \n\t", 0},
		{"mixed entries", `{"messages":[{"id":"1"},"oops",null]}`, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := DecodeRecords([]byte(tc.input))
			require.NoError(t, err)
			require.NotNil(t, records)
			require.Len(t, records, tc.want)
		})
	}
}

func TestDecodeRecordsPreservesOrder(t *testing.T) {
	records, err := DecodeRecords([]byte(`{"messages":[{"id":"b"},{"id":"a"},{"id":"c"}]}`))
	require.NoError(t, err)
	var ids []string
	for _, rec := range records {
		ids = append(ids, rec.ID())
	}
	require.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestDecodeRecordsMalformed(t *testing.T) {
	for _, input := range []string{
		`{"messages": [`,
		`not json`,
		`{"messages": {"id": "1"}}`,
		`"a string"`,
		`42`,
	} {
		_, err := DecodeRecords([]byte(input))
		if !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("DecodeRecords(%q) err=%v, want ErrMalformedDocument", input, err)
		}
	}
}

func TestDecodeThreads(t *testing.T) {
	arr := `[{"thread_id":"A","messages":[{"id":"1"}]},{"thread_id":"B"}]`
	threads, err := DecodeThreads([]byte(arr))
	require.NoError(t, err)
	require.Len(t, threads, 2)
	require.Equal(t, "A", threads[0].ThreadID)
	require.Equal(t, "1", threads[0].Messages[0].ID())
	require.NotNil(t, threads[1].Messages)
	require.Empty(t, threads[1].Messages)

	legacy := `{"threads":[{"thread_id":"A","messages":[]}]}`
	threads, err = DecodeThreads([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, threads, 1)

	threads, err = DecodeThreads([]byte(`{}`))
	require.NoError(t, err)
	require.Empty(t, threads)

	_, err = DecodeThreads([]byte(`[{"thread_id":`))
	require.ErrorIs(t, err, ErrMalformedDocument)
	_, err = DecodeThreads([]byte(`true`))
	require.ErrorIs(t, err, ErrMalformedDocument)
}

func TestMarshalDocument(t *testing.T) {
	threads := []Thread{{
		ThreadID: "A",
		Messages: []Record{NewRecord([]byte(`{"body":{"content":"<p>hi</p>"}}`))},
	}}
	out, err := MarshalDocument(threads)
	require.NoError(t, err)
	text := string(out)
	require.True(t, strings.HasSuffix(text, "\n"))
	require.Contains(t, text, `"<p>hi</p>"`)
	require.Contains(t, text, "\n  {\n    \"thread_id\": \"A\"")

	empty, err := MarshalDocument([]Thread{})
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(empty))
}

func TestMarshalCompact(t *testing.T) {
	out, err := MarshalCompact(Classification{ThreadID: "A", Type: "Error"})
	require.NoError(t, err)
	require.Equal(t, `{"thread_id":"A","Incident Number":"","Root Cause":"","Type":"Error","Severity":""}`, string(out))
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	records := []byte("{\"messages\":[{\"from\":{\"user\":{\"displayName\":\"Al\xffce\"}}}]}")
	_, err := DecodeRecords(records)
	require.ErrorIs(t, err, ErrMalformedDocument)
	require.ErrorContains(t, err, "UTF-8")

	threads := []byte("[{\"thread_id\":\"A\xfe\",\"messages\":[]}]")
	_, err = DecodeThreads(threads)
	require.ErrorIs(t, err, ErrMalformedDocument)
}
