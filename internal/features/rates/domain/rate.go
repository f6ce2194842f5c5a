package domain

import "strings"

// Titles of the four flat rates the delivery zone carries.
const (
	TitleFree         = "PostNet Free Shipping"
	TitleStoreToStore = "PostNet to PostNet"
	TitleExpress      = "PostNet Express"
	TitleEconomy      = "PostNet Economy"
)

// Titles returns the delivery rate titles in the order they are configured.
func Titles() []string {
	return []string{TitleFree, TitleStoreToStore, TitleExpress, TitleEconomy}
}

// RateKind identifies which delivery rule governs a rate.
type RateKind int

const (
	RateKindOther RateKind = iota
	RateKindFree
	RateKindStoreToStore
	RateKindExpress
	RateKindEconomy
)

var kindNames = map[RateKind]string{
	RateKindOther:        "other",
	RateKindFree:         "free",
	RateKindStoreToStore: "store_to_store",
	RateKindExpress:      "express",
	RateKindEconomy:      "economy",
}

// String returns the metric/JSON name of the kind.
func (k RateKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "other"
}

// MarshalText implements encoding.TextMarshaler.
func (k RateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode as RateKindOther.
func (k *RateKind) UnmarshalText(text []byte) error {
	*k = RateKindOther
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
		}
	}
	return nil
}

// KindFromLabel maps a rate label to its kind. Unknown labels are RateKindOther.
func KindFromLabel(label string) RateKind {
	switch strings.TrimSpace(label) {
	case TitleFree:
		return RateKindFree
	case TitleStoreToStore:
		return RateKindStoreToStore
	case TitleExpress:
		return RateKindExpress
	case TitleEconomy:
		return RateKindEconomy
	}
	return RateKindOther
}

// ShippingOption is one rate offered at checkout.
type ShippingOption struct {
	ID         string   `json:"id"`
	MethodID   string   `json:"method_id"`
	InstanceID int64    `json:"instance_id"`
	Label      string   `json:"label"`
	Cost       float64  `json:"cost"`
	Kind       RateKind `json:"kind"`
}

// PackageItem is a cart line of a shipping package.
type PackageItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Package is the cart being shipped.
type Package struct {
	Subtotal float64       `json:"cart_subtotal"`
	Postcode string        `json:"postcode"`
	Items    []PackageItem `json:"contents"`
}

// ProductIDs returns the distinct product ids in the package.
func (p Package) ProductIDs() []int64 {
	seen := make(map[int64]bool, len(p.Items))
	ids := make([]int64, 0, len(p.Items))
	for _, it := range p.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}
