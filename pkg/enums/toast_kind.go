package enums

import "fmt"

// ToastKind classifies a transient user-facing notification.
type ToastKind string

const (
	ToastKindSuccess ToastKind = "success"
	ToastKindInfo    ToastKind = "info"
	ToastKindError   ToastKind = "error"
)

var validToastKinds = []ToastKind{
	ToastKindSuccess,
	ToastKindInfo,
	ToastKindError,
}

// String implements fmt.Stringer.
func (k ToastKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ToastKind.
func (k ToastKind) IsValid() bool {
	for _, candidate := range validToastKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseToastKind converts raw input into a ToastKind.
func ParseToastKind(value string) (ToastKind, error) {
	for _, candidate := range validToastKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid toast kind %q", value)
}
