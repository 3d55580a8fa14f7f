package enums

import "fmt"

// OutboxEventType names the domain events emitted through the outbox.
type OutboxEventType string

const (
	OutboxEventListingCreated   OutboxEventType = "listing.created"
	OutboxEventListingUpdated   OutboxEventType = "listing.updated"
	OutboxEventListingCancelled OutboxEventType = "listing.cancelled"
	OutboxEventListingSold      OutboxEventType = "listing.sold"
	OutboxEventListingDeleted   OutboxEventType = "listing.deleted"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventListingCreated,
	OutboxEventListingUpdated,
	OutboxEventListingCancelled,
	OutboxEventListingSold,
	OutboxEventListingDeleted,
}

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event refers to.
type OutboxAggregateType string

const (
	OutboxAggregateListing OutboxAggregateType = "listing"
)

// String implements fmt.Stringer.
func (t OutboxAggregateType) String() string {
	return string(t)
}
