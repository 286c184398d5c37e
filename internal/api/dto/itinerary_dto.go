package dto

import (
	"time"

	"github.com/travel-desk/itinerary-service/internal/domain"
	"github.com/travel-desk/itinerary-service/internal/service"
)

// ItineraryRequest is the create/update payload. Absent fields stay nil.
type ItineraryRequest struct {
	FromCity  *string `json:"from_city"`
	ToCity    *string `json:"to_city"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Purpose   *string `json:"purpose"`
	Type      *string `json:"type"`
	Mode      *string `json:"mode"`
	Status    *string `json:"status"`
}

// ToInput converts the payload to the service input.
func (r ItineraryRequest) ToInput() service.ItineraryInput {
	return service.ItineraryInput{
		FromCity:  r.FromCity,
		ToCity:    r.ToCity,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Purpose:   r.Purpose,
		Type:      r.Type,
		Mode:      r.Mode,
		Status:    r.Status,
	}
}

// ItineraryResponse is the serialized itinerary.
type ItineraryResponse struct {
	ID          int64            `json:"id"`
	User        UserSummary      `json:"user"`
	Employee    *EmployeeSummary `json:"employee"`
	FromCity    string           `json:"from_city"`
	ToCity      string           `json:"to_city"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Status      string           `json:"status"`
	Type        string           `json:"type"`
	Mode        string           `json:"mode"`
	Purpose     string           `json:"purpose"`
	RequestDate string           `json:"request_date"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ItineraryListResponse is one page of itineraries.
type ItineraryListResponse struct {
	Count    int                 `json:"count"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
	Results  []ItineraryResponse `json:"results"`
}

// NewItineraryResponse maps a decorated itinerary.
func NewItineraryResponse(itinerary *domain.Itinerary) ItineraryResponse {
	return ItineraryResponse{
		ID:          itinerary.ID,
		User:        NewUserSummary(itinerary.Owner),
		Employee:    NewEmployeeSummary(itinerary.Employee),
		FromCity:    itinerary.FromCity,
		ToCity:      itinerary.ToCity,
		StartDate:   itinerary.StartDate.Format(service.DateLayout),
		EndDate:     itinerary.EndDate.Format(service.DateLayout),
		Status:      string(itinerary.Status),
		Type:        string(itinerary.Type),
		Mode:        string(itinerary.Mode),
		Purpose:     itinerary.Purpose,
		RequestDate: itinerary.RequestDate.Format(service.DateLayout),
		CreatedAt:   itinerary.CreatedAt,
		UpdatedAt:   itinerary.UpdatedAt,
	}
}

// NewItineraryListResponse maps a page; next/previous are built by linkFor.
func NewItineraryListResponse(page *service.ItineraryPage, linkFor func(page int) string) ItineraryListResponse {
	resp := ItineraryListResponse{
		Count:    page.Count,
		Page:     page.Page,
		PageSize: page.PageSize,
		Results:  make([]ItineraryResponse, 0, len(page.Items)),
	}
	for i := range page.Items {
		resp.Results = append(resp.Results, NewItineraryResponse(&page.Items[i]))
	}
	if page.HasNext {
		next := linkFor(page.Page + 1)
		resp.Next = &next
	}
	if page.HasPrev {
		prev := linkFor(page.Page - 1)
		resp.Previous = &prev
	}
	return resp
}
