package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-vorgaben/internal/model"
)

// Kind is the classification of a block header.
type Kind int

// Header kinds.
const (
	KindUnrecognized Kind = iota
	KindContent
	KindIntroduction
	KindScope
	KindRequirement
	KindTitle
	KindNumber
	KindShortText
	KindLongText
	KindKeywords
	KindChecklist
)

var kindNames = [...]string{
	KindUnrecognized: "unrecognized",
	KindContent:      "content",
	KindIntroduction: "einleitung",
	KindScope:        "geltungsbereich",
	KindRequirement:  "vorgabe",
	KindTitle:        "titel",
	KindNumber:       "nummer",
	KindShortText:    "kurztext",
	KindLongText:     "langtext",
	KindKeywords:     "stichworte",
	KindChecklist:    "checkliste",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Header is a classified block header.
type Header struct {
	Kind        Kind
	ContentType model.ContentType // KindContent only
	Value       string            // topic (vorgabe) or inline value (titel, stichworte)
	Number      int               // nummer only
	HasNumber   bool
}

// keywordRule matches a normalized header against one keyword.
type keywordRule struct {
	keyword string
	prefix  bool
	kind    Kind
}

// keywordRules is checked in order after content-type labels.
var keywordRules = []keywordRule{
	{keyword: "einleitung", kind: KindIntroduction},
	{keyword: "geltungsbereich", kind: KindScope},
	{keyword: "vorgabe", prefix: true, kind: KindRequirement},
	{keyword: "titel", prefix: true, kind: KindTitle},
	{keyword: "nummer", prefix: true, kind: KindNumber},
	{keyword: "kurztext", kind: KindShortText},
	{keyword: "langtext", kind: KindLongText},
	{keyword: "stichworte", prefix: true, kind: KindKeywords},
	{keyword: "checkliste", kind: KindChecklist},
}

var firstInteger = regexp.MustCompile(`\d+`)

func (r keywordRule) matches(normalized string) bool {
	if r.prefix {
		return strings.HasPrefix(normalized, r.keyword)
	}
	return normalized == r.keyword
}

// Classify normalizes a header line and classifies it. Content-type labels
// take priority over keywords; anything else is KindUnrecognized.
func Classify(header string) Header {
	header = strings.TrimSpace(header)
	normalized := model.NormalizeLabel(header)

	if ct, ok := model.LabelContentType(normalized); ok {
		return Header{Kind: KindContent, ContentType: ct}
	}

	for _, rule := range keywordRules {
		if !rule.matches(normalized) {
			continue
		}
		h := Header{Kind: rule.kind}
		switch rule.kind {
		case KindRequirement:
			_, topic, _ := strings.Cut(header, " ")
			h.Value = strings.TrimSpace(topic)
		case KindTitle, KindKeywords:
			h.Value = inlineValue(header, rule.keyword)
		case KindNumber:
			h.Number, h.HasNumber = parseFirstInteger(header)
		}
		return h
	}

	return Header{Kind: KindUnrecognized}
}

// inlineValue returns the header text after keyword, or "" when the header
// does not literally start with it (case-insensitive).
func inlineValue(header, keyword string) string {
	if len(header) < len(keyword) || !strings.EqualFold(header[:len(keyword)], keyword) {
		return ""
	}
	return strings.TrimSpace(header[len(keyword):])
}

func parseFirstInteger(s string) (int, bool) {
	digits := firstInteger.FindString(s)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
