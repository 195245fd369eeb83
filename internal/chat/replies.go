// File: internal/chat/replies.go
package chat

import (
	"strings"

	"golang.org/x/text/language"
)

type cannedReply int

const (
	replyUnavailable cannedReply = iota
	replyNetworkError
)

// Hindi comes first so it is the fallback for unmatched languages.
var replyLanguages = language.NewMatcher([]language.Tag{language.Hindi, language.English})

var cannedReplies = map[language.Tag]map[cannedReply]string{
	language.Hindi: {
		replyUnavailable:  "AI सेवा अभी उपलब्ध नहीं है।",
		replyNetworkError: "नेटवर्क समस्या है, बाद में कोशिश करें।",
	},
	language.English: {
		replyUnavailable:  "The AI service is not available right now.",
		replyNetworkError: "Network problem, please try again later.",
	},
}

// replyLanguage picks Hindi or English from an explicit language code,
// falling back to the Accept-Language header.
func replyLanguage(lang, acceptLanguage string) language.Tag {
	var prefs []language.Tag
	if lang = strings.TrimSpace(lang); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			prefs = append(prefs, tag)
		}
	}
	if len(prefs) == 0 && acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			prefs = tags
		}
	}
	_, idx, _ := replyLanguages.Match(prefs...)
	if idx == 1 {
		return language.English
	}
	return language.Hindi
}

func canned(tag language.Tag, kind cannedReply) string {
	return cannedReplies[tag][kind]
}
