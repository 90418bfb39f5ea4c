package model

import "fmt"

// WarningKind classifies non-fatal import anomalies.
type WarningKind int

// Warning kinds.
const (
	WarnDroppedContent WarningKind = iota + 1
	WarnIgnoredHeader
	WarnOrphanField
	WarnMissingNumber
	WarnUnresolvedTopic
	WarnUnknownContentType
)

var warningNames = map[WarningKind]string{
	WarnDroppedContent:     "dropped-content",
	WarnIgnoredHeader:      "ignored-header",
	WarnOrphanField:        "orphan-field",
	WarnMissingNumber:      "missing-number",
	WarnUnresolvedTopic:    "unresolved-topic",
	WarnUnknownContentType: "unknown-content-type",
}

func (k WarningKind) String() string {
	if name, ok := warningNames[k]; ok {
		return name
	}
	return fmt.Sprintf("warning(%d)", int(k))
}

// NoBlock marks a warning that is not tied to a source block.
const NoBlock = -1

// Warning is a non-fatal anomaly found while parsing or importing.
type Warning struct {
	Kind    WarningKind
	Block   int // zero-based block index, or NoBlock
	Message string
}

func (w Warning) String() string {
	if w.Block == NoBlock {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("block %d: %s: %s", w.Block+1, w.Kind, w.Message)
}
