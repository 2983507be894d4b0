package thread

import (
	"strconv"

	"github.com/avivsinai/thread-triage/internal/format"
	"github.com/avivsinai/thread-triage/internal/markup"
)

// Anonymize masks one record: the conversation identity is dropped, the
// display name and mentions are replaced with the sentinel, extra mask paths
// are applied, and the body is reduced to text unless KeepHTML is set.
// Duplicate keys are collapsed first so no second copy escapes masking.
func Anonymize(rec format.Record, opts Options) (format.Record, error) {
	sentinel := opts.sentinel()

	out, err := rec.Canonical().Without(format.PathConversation)
	if err != nil {
		return rec, err
	}
	if out, err = maskDisplayName(out, sentinel); err != nil {
		return rec, err
	}
	for _, path := range opts.MaskPaths {
		if !out.Get(path).Exists() {
			continue
		}
		if out, err = out.With(path, sentinel); err != nil {
			return rec, err
		}
	}
	if out, err = maskMentions(out, sentinel); err != nil {
		return rec, err
	}
	if !opts.KeepHTML {
		out = stripContent(out, sentinel)
	}
	return out, nil
}

// maskDisplayName forces from.user.displayName to the sentinel whatever the
// shape of "from": system messages carry a null sender.
func maskDisplayName(rec format.Record, sentinel string) (format.Record, error) {
	from := rec.Get(format.PathFrom)
	switch {
	case from.IsObject() && rec.Get(format.PathUser).IsObject():
		return rec.With(format.PathDisplayName, sentinel)
	case from.IsObject():
		user, err := format.MarshalCompact(map[string]string{"displayName": sentinel})
		if err != nil {
			return rec, err
		}
		return rec.WithRaw(format.PathUser, user)
	default:
		sender, err := format.MarshalCompact(map[string]map[string]string{"user": {"displayName": sentinel}})
		if err != nil {
			return rec, err
		}
		return rec.WithRaw(format.PathFrom, sender)
	}
}

func maskMentions(rec format.Record, sentinel string) (format.Record, error) {
	mentions := rec.Get(format.PathMentions)
	if !mentions.IsArray() {
		return rec, nil
	}
	n := len(mentions.Array())
	var err error
	for i := 0; i < n; i++ {
		base := format.PathMentions + "." + strconv.Itoa(i)
		for _, field := range []string{".mentionText", ".mentioned.user.displayName"} {
			if rec.Get(base + field).Exists() {
				if rec, err = rec.With(base+field, sentinel); err != nil {
					return rec, err
				}
			}
		}
	}
	return rec, nil
}

// stripContent reduces body.content to plain text. Anything other than a
// string body is left as it is.
func stripContent(rec format.Record, sentinel string) format.Record {
	content, ok := rec.Content()
	if !ok {
		return rec
	}
	plain := markup.Strip(content, markup.Options{MentionText: sentinel})
	out, err := rec.With(format.PathContent, plain)
	if err != nil {
		return rec
	}
	if out.Get(format.PathContentType).Exists() {
		if typed, err := out.With(format.PathContentType, "text"); err == nil {
			out = typed
		}
	}
	return out
}
