package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type VariantKind string

const (
	VariantVolume VariantKind = "volume"
	VariantSize   VariantKind = "size"
)

// Variant is the size/volume dimension distinguishing price tiers of the same
// product. A tier is keyed either by a volume in milliliters (perfume
// collections) or by a free-form size label (rituals collection), never both.
type Variant struct {
	Kind  VariantKind
	ML    int
	Label string
}

func VolumeVariant(ml int) Variant {
	return Variant{Kind: VariantVolume, ML: ml}
}

func SizeVariant(label string) Variant {
	return Variant{Kind: VariantSize, Label: label}
}

// Key returns a stable identity string used for cart line identity and storage.
func (v Variant) Key() string {
	switch v.Kind {
	case VariantVolume:
		return "v:" + strconv.Itoa(v.ML)
	case VariantSize:
		return "s:" + v.Label
	}
	return ""
}

func (v Variant) IsZero() bool {
	return v.Kind == ""
}

func (v Variant) Equal(o Variant) bool {
	return v.Key() == o.Key()
}

// String renders the customer-facing form, e.g. "50ml" or "M".
func (v Variant) String() string {
	switch v.Kind {
	case VariantVolume:
		return fmt.Sprintf("%dml", v.ML)
	case VariantSize:
		return v.Label
	}
	return ""
}

// MarshalJSON keeps the wire format of the original catalog: a bare number for
// volume tiers, a string for size tiers.
func (v Variant) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case VariantVolume:
		return []byte(strconv.Itoa(v.ML)), nil
	case VariantSize:
		return json.Marshal(v.Label)
	}
	return []byte("null"), nil
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*v = Variant{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*v = SizeVariant(label)
		return nil
	}
	ml, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("variant must be a volume number or a size label: %w", err)
	}
	*v = VolumeVariant(int(ml))
	return nil
}

// PriceTier is one purchasable variant of a product with its price in main
// currency units.
type PriceTier struct {
	Variant Variant `json:"variant"`
	Amount  float64 `json:"amount"`
}
