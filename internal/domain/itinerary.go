package domain

import "time"

// ItineraryStatus enumerates workflow states for a travel request.
type ItineraryStatus string

const (
	ItineraryStatusPending   ItineraryStatus = "Pending"
	ItineraryStatusApproved  ItineraryStatus = "Approved"
	ItineraryStatusRejected  ItineraryStatus = "Rejected"
	ItineraryStatusCompleted ItineraryStatus = "Completed"
	ItineraryStatusWithdrawn ItineraryStatus = "Withdrawn"
)

// TravelType distinguishes domestic from international trips.
type TravelType string

const (
	TravelTypeDomestic      TravelType = "Domestic"
	TravelTypeInternational TravelType = "International"
)

// TravelMode is the primary means of transport.
type TravelMode string

const (
	TravelModeFlight TravelMode = "Flight"
	TravelModeTrain  TravelMode = "Train"
	TravelModeBus    TravelMode = "Bus"
	TravelModeCar    TravelMode = "Car"
)

// ValidTravelTypes lists accepted TravelType values.
var ValidTravelTypes = []TravelType{TravelTypeDomestic, TravelTypeInternational}

// ValidTravelModes lists accepted TravelMode values.
var ValidTravelModes = []TravelMode{TravelModeFlight, TravelModeTrain, TravelModeBus, TravelModeCar}

// Itinerary is a single travel request owned by one identity.
// Dates are calendar dates stored at UTC midnight.
type Itinerary struct {
	ID          int64
	UserID      int64
	FromCity    string
	ToCity      string
	StartDate   time.Time
	EndDate     time.Time
	Status      ItineraryStatus
	Type        TravelType
	Mode        TravelMode
	Purpose     string
	RequestDate time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated by the service for rendering; not persisted.
	Owner    *Identity
	Employee *Employee
}

// CanWithdraw reports whether the owner may still withdraw the request.
func (i *Itinerary) CanWithdraw() bool {
	switch i.Status {
	case ItineraryStatusCompleted, ItineraryStatusRejected, ItineraryStatusWithdrawn:
		return false
	default:
		return true
	}
}
