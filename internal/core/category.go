package core

import "strings"

// Reserved category labels on the wire. Any other label is an ordinary
// user-chosen category.
const (
	labelInstrumentPayment = "instrument payment"
	labelTransfer          = "transfer"
)

type CategoryKind int

const (
	// CategoryOther is a free-form user category.
	CategoryOther CategoryKind = iota
	// CategoryInstrumentPayment marks a record that settles a credit
	// instrument's pending amount.
	CategoryInstrumentPayment
	// CategoryTransfer marks one half of a pocket-to-pocket transfer.
	CategoryTransfer
)

// Category is a closed tagged variant over the record category label, so
// the classification policy never compares raw strings.
type Category struct {
	Kind  CategoryKind
	Label string // only set for CategoryOther
}

func InstrumentPaymentCategory() Category { return Category{Kind: CategoryInstrumentPayment} }

func TransferCategory() Category { return Category{Kind: CategoryTransfer} }

func OtherCategory(label string) Category {
	return Category{Kind: CategoryOther, Label: strings.TrimSpace(label)}
}

// ParseCategory maps a stored label onto the closed variant. The two
// reserved labels are matched case-insensitively; everything else is Other.
func ParseCategory(label string) Category {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case labelInstrumentPayment:
		return InstrumentPaymentCategory()
	case labelTransfer:
		return TransferCategory()
	}
	return OtherCategory(label)
}

// String returns the wire label for the category.
func (c Category) String() string {
	switch c.Kind {
	case CategoryInstrumentPayment:
		return labelInstrumentPayment
	case CategoryTransfer:
		return labelTransfer
	}
	return c.Label
}

func (c Category) IsInstrumentPayment() bool { return c.Kind == CategoryInstrumentPayment }

func (c Category) IsTransfer() bool { return c.Kind == CategoryTransfer }
