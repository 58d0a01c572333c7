package enums

import "fmt"

// BannerStatus represents the publication state of a promotional banner.
type BannerStatus string

const (
	BannerStatusActive   BannerStatus = "active"
	BannerStatusInactive BannerStatus = "inactive"
)

var validBannerStatuses = []BannerStatus{
	BannerStatusActive,
	BannerStatusInactive,
}

// String implements fmt.Stringer.
func (s BannerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BannerStatus.
func (s BannerStatus) IsValid() bool {
	for _, candidate := range validBannerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBannerStatus converts raw input into a BannerStatus.
func ParseBannerStatus(value string) (BannerStatus, error) {
	for _, candidate := range validBannerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid banner status %q", value)
}

// BannerType discriminates the banner union: a discount banner carries a
// discount payload, an informative banner an editorial one.
type BannerType string

const (
	BannerTypeDiscount    BannerType = "discount"
	BannerTypeInformative BannerType = "informative"
)

var validBannerTypes = []BannerType{
	BannerTypeDiscount,
	BannerTypeInformative,
}

// String implements fmt.Stringer.
func (t BannerType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known BannerType.
func (t BannerType) IsValid() bool {
	for _, candidate := range validBannerTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseBannerType converts raw input into a BannerType.
func ParseBannerType(value string) (BannerType, error) {
	for _, candidate := range validBannerTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid banner type %q", value)
}
