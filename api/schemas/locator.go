// File: api/schemas/locator.go
package schemas

// SelectorKind identifies the selector dialect a locator value is written in.
type SelectorKind string

const (
	SelectorXPath           SelectorKind = "xpath"
	SelectorCSS             SelectorKind = "css"
	SelectorID              SelectorKind = "id"
	SelectorName            SelectorKind = "name"
	SelectorClass           SelectorKind = "class"
	SelectorTag             SelectorKind = "tag"
	SelectorLinkText        SelectorKind = "link_text"
	SelectorPartialLinkText SelectorKind = "partial_link_text"
)

// Valid reports whether k is one of the known selector kinds.
func (k SelectorKind) Valid() bool {
	switch k {
	case SelectorXPath, SelectorCSS, SelectorID, SelectorName,
		SelectorClass, SelectorTag, SelectorLinkText, SelectorPartialLinkText:
		return true
	}
	return false
}

// Locator identifies a UI element by a (kind, value) pair.
// It is an immutable value type; equality is structural.
type Locator struct {
	Kind  SelectorKind `json:"kind"`
	Value string       `json:"value"`
}

// NewLocator constructs a locator. It does not validate the value against
// the kind's grammar; callers decide how strict to be.
func NewLocator(kind SelectorKind, value string) Locator {
	return Locator{Kind: kind, Value: value}
}
