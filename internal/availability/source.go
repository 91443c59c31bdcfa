package availability

import (
	"fmt"
	"strings"
)

// SourceKind distinguishes who blocked a day.
type SourceKind string

const (
	// SourceManual marks a day blocked directly by the property owner.
	SourceManual SourceKind = "manual"
	// SourceFeed marks a day imported from an external calendar feed.
	SourceFeed SourceKind = "feed"
)

// SourceTag attributes a blocked day to its origin. Exactly one tag is
// attached per blocked day; a day absent from the map is available.
type SourceTag struct {
	Kind   SourceKind
	FeedID string
}

// ManualTag returns the owner-edit tag.
func ManualTag() SourceTag {
	return SourceTag{Kind: SourceManual}
}

// FeedTag returns the tag for the external feed with the given ID.
func FeedTag(feedID string) SourceTag {
	return SourceTag{Kind: SourceFeed, FeedID: feedID}
}

// IsManual reports whether the tag is an owner edit.
func (t SourceTag) IsManual() bool {
	return t.Kind == SourceManual
}

// IsFeed reports whether the tag belongs to an external feed.
func (t SourceTag) IsFeed() bool {
	return t.Kind == SourceFeed
}

// String renders the tag in its storage form: "manual" or "feed:<id>".
func (t SourceTag) String() string {
	if t.IsFeed() {
		return string(SourceFeed) + ":" + t.FeedID
	}
	return string(SourceManual)
}

// MarshalJSON encodes the tag in its storage form.
func (t SourceTag) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes the storage form.
func (t *SourceTag) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid source tag value: %s", s)
	}
	tag, err := ParseSourceTag(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = tag
	return nil
}

// ParseSourceTag parses the storage form produced by String.
func ParseSourceTag(s string) (SourceTag, error) {
	if s == string(SourceManual) {
		return ManualTag(), nil
	}
	if id, ok := strings.CutPrefix(s, string(SourceFeed)+":"); ok && id != "" {
		return FeedTag(id), nil
	}
	return SourceTag{}, fmt.Errorf("invalid source tag %q", s)
}
