// Package naming canonicalizes local image filenames and extracts the
// item/color/slot identity encoded in them.
package naming

import (
	"regexp"
	"strings"
)

// Slot labels: 001-008 are detail images, 101 is the swatch color block, 102
// is the swatch product image. A trailing "!" marks the hero variant.
const (
	SlotSwatchColor   = "101"
	SlotSwatchProduct = "102"
	SlotMainImage     = "001"
)

// Warnings surfaced by Classify for names that carry no usable identity.
const (
	WarningInvalidFilename = "Invalid Filename"
	WarningBareItemNumber  = "Filename is a bare item number with no slot suffix"
)

// Classification is the structured identity parsed from a recognized filename.
type Classification struct {
	ItemNumber string
	ColorCode  string
	Slot       string
	Hero       bool
}

// IsSwatch reports whether the slot is one of the two swatch slots.
func (c *Classification) IsSwatch() bool {
	return c.Slot == SlotSwatchColor || c.Slot == SlotSwatchProduct
}

// CompanionSwatchSlot returns the other half of the 101/102 pair, or "" for
// non-swatch slots.
func (c *Classification) CompanionSwatchSlot() string {
	switch c.Slot {
	case SlotSwatchColor:
		return SlotSwatchProduct
	case SlotSwatchProduct:
		return SlotSwatchColor
	}
	return ""
}

var (
	trailingSlot = regexp.MustCompile(`^(.+)[._](\d{3})(\.[A-Za-z0-9]+)$`)

	// item = leading letters+digits token; ext is validated elsewhere.
	// The separator before the swatch slot varies in the wild; the separator
	// after the item number is what distinguishes the two conventions.
	itemColorUnderscore = regexp.MustCompile(`(?i)^([a-z]+\d+)_([a-z0-9]+)[._](10[12])(!?)\.([a-z0-9]+)$`)
	itemColorDot        = regexp.MustCompile(`(?i)^([a-z]+\d+)\.([a-z0-9]+)[._](10[12])(!?)\.([a-z0-9]+)$`)
	itemUnderscore      = regexp.MustCompile(`(?i)^([a-z]+\d+)_(00[1-8])\.([a-z0-9]+)$`)
	itemDot             = regexp.MustCompile(`(?i)^([a-z]+\d+)\.(00[1-8])\.([a-z0-9]+)$`)
	bareItem            = regexp.MustCompile(`(?i)^([a-z]+\d+)(\.[a-z0-9]+)?$`)
)

// Normalize rewrites a trailing ".NNN" or "_NNN" slot suffix before the
// extension into the canonical underscore form "_NNN.ext". Names without a
// trailing three-digit slot come back unchanged.
func Normalize(name string) string {
	m := trailingSlot.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	return m[1] + "_" + m[2] + m[3]
}

// Classify parses a filename against the recognized naming conventions, in
// priority order, first match wins:
//
//  1. Item_Color_NNN  (swatch slots 101/102)
//  2. Item.Color.NNN
//  3. Item_NNN        (detail slots 001-008)
//  4. Item.NNN
//  5. bare Item       (warning only, no structured identity)
//
// The warning string is non-empty for names the inventory validator should
// flag; classification and warning are never both set.
func Classify(name string) (*Classification, string) {
	if m := itemColorUnderscore.FindStringSubmatch(name); m != nil {
		return &Classification{
			ItemNumber: m[1],
			ColorCode:  m[2],
			Slot:       m[3],
			Hero:       m[4] == "!",
		}, ""
	}
	if m := itemColorDot.FindStringSubmatch(name); m != nil {
		return &Classification{
			ItemNumber: m[1],
			ColorCode:  m[2],
			Slot:       m[3],
			Hero:       m[4] == "!",
		}, ""
	}
	if m := itemUnderscore.FindStringSubmatch(name); m != nil {
		return &Classification{ItemNumber: m[1], Slot: m[2]}, ""
	}
	if m := itemDot.FindStringSubmatch(name); m != nil {
		return &Classification{ItemNumber: m[1], Slot: m[2]}, ""
	}
	if m := bareItem.FindStringSubmatch(name); m != nil && len(m[1]) >= 6 {
		return nil, WarningBareItemNumber
	}
	return nil, WarningInvalidFilename
}

// ItemNumber extracts the leading item token from a name: everything before
// the first "_" or ".". Empty when the name starts with a separator.
func ItemNumber(name string) string {
	if idx := strings.IndexAny(name, "_."); idx >= 0 {
		return name[:idx]
	}
	return name
}
