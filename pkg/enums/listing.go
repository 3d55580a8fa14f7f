package enums

import "fmt"

// ListingStatus tracks where a card listing sits in its lifecycle.
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusCancelled ListingStatus = "cancelled"
	ListingStatusExpired   ListingStatus = "expired"
)

var validListingStatuses = []ListingStatus{
	ListingStatusActive,
	ListingStatusSold,
	ListingStatusCancelled,
	ListingStatusExpired,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further mutation.
// Expired is set by an external scheduler, never by this service.
func (s ListingStatus) IsTerminal() bool {
	switch s {
	case ListingStatusSold, ListingStatusCancelled, ListingStatusExpired:
		return true
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}

// FinishType identifies the card finish a collection entry holds.
type FinishType string

const (
	FinishTypeNormal FinishType = "normal"
	FinishTypeFoil   FinishType = "foil"
	FinishTypeEtched FinishType = "etched"
)

var validFinishTypes = []FinishType{
	FinishTypeNormal,
	FinishTypeFoil,
	FinishTypeEtched,
}

// String implements fmt.Stringer.
func (f FinishType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FinishType.
func (f FinishType) IsValid() bool {
	for _, candidate := range validFinishTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFinishType converts raw input into a FinishType.
func ParseFinishType(value string) (FinishType, error) {
	for _, candidate := range validFinishTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid finish type %q", value)
}

// CardCondition grades the physical state of the listed cards.
type CardCondition string

const (
	CardConditionNearMint         CardCondition = "near_mint"
	CardConditionLightlyPlayed    CardCondition = "lightly_played"
	CardConditionModeratelyPlayed CardCondition = "moderately_played"
	CardConditionHeavilyPlayed    CardCondition = "heavily_played"
	CardConditionDamaged          CardCondition = "damaged"
)

var validCardConditions = []CardCondition{
	CardConditionNearMint,
	CardConditionLightlyPlayed,
	CardConditionModeratelyPlayed,
	CardConditionHeavilyPlayed,
	CardConditionDamaged,
}

// String implements fmt.Stringer.
func (c CardCondition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CardCondition.
func (c CardCondition) IsValid() bool {
	for _, candidate := range validCardConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCardCondition converts raw input into a CardCondition.
func ParseCardCondition(value string) (CardCondition, error) {
	for _, candidate := range validCardConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid card condition %q", value)
}

// ListingType distinguishes in-person sales from online marketplace listings.
type ListingType string

const (
	ListingTypePhysical ListingType = "physical"
	ListingTypeOnline   ListingType = "online"
)

var validListingTypes = []ListingType{
	ListingTypePhysical,
	ListingTypeOnline,
}

// String implements fmt.Stringer.
func (l ListingType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingType.
func (l ListingType) IsValid() bool {
	for _, candidate := range validListingTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingType converts raw input into a ListingType.
func ParseListingType(value string) (ListingType, error) {
	for _, candidate := range validListingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing type %q", value)
}
