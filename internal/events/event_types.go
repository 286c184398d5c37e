package events

import (
	"time"

	"github.com/travel-desk/itinerary-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityRegistered  EventType = "identity_registered"
	EventIdentityProvisioned EventType = "identity_provisioned"
	EventItineraryCreated    EventType = "itinerary_created"
	EventItineraryUpdated    EventType = "itinerary_updated"
	EventItineraryWithdrawn  EventType = "itinerary_withdrawn"
	EventItineraryDeleted    EventType = "itinerary_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ActorID     int64       `json:"actor_id"`
	ItineraryID int64       `json:"itinerary_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// IdentityPayload describes a newly created account.
type IdentityPayload struct {
	Username   string `json:"username"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// ItineraryCreatedPayload payload.
type ItineraryCreatedPayload struct {
	FromCity string            `json:"from_city"`
	ToCity   string            `json:"to_city"`
	Type     domain.TravelType `json:"type"`
	Mode     domain.TravelMode `json:"mode"`
}

// ItineraryUpdatedPayload lists the fields the owner changed.
type ItineraryUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// ItineraryStatusPayload payload.
type ItineraryStatusPayload struct {
	OldStatus domain.ItineraryStatus `json:"old_status"`
	NewStatus domain.ItineraryStatus `json:"new_status"`
}
