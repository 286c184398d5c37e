package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/travel-desk/itinerary-service/internal/domain"
	"github.com/travel-desk/itinerary-service/internal/events"
	"github.com/travel-desk/itinerary-service/internal/repository"
	apperrors "github.com/travel-desk/itinerary-service/pkg/util/errorutil"
)

// ItineraryService implements the owner-scoped itinerary workflow.
type ItineraryService struct {
	itineraries repository.ItineraryRepository
	employees   repository.EmployeeRepository
	tx          repository.TxRunner
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// ItineraryDependencies bundles collaborators for the itinerary service.
type ItineraryDependencies struct {
	ItineraryRepo repository.ItineraryRepository
	EmployeeRepo  repository.EmployeeRepository
	TxRunner      repository.TxRunner
	Dispatcher    events.Dispatcher
	Clock         func() time.Time
}

// ItineraryInput is the client payload. Nil means the field was not sent.
// Status is accepted so callers can forward it, but it is never applied.
type ItineraryInput struct {
	FromCity  *string
	ToCity    *string
	StartDate *string
	EndDate   *string
	Purpose   *string
	Type      *string
	Mode      *string
	Status    *string
}

// ItineraryPage is one page of the caller's itineraries.
type ItineraryPage struct {
	Items    []domain.Itinerary
	Count    int
	Page     int
	PageSize int
	HasNext  bool
	HasPrev  bool
}

// NewItineraryService constructs the service.
func NewItineraryService(deps ItineraryDependencies) *ItineraryService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ItineraryService{
		itineraries: deps.ItineraryRepo,
		employees:   deps.EmployeeRepo,
		tx:          deps.TxRunner,
		dispatcher:  deps.Dispatcher,
		now:         clock,
	}
}

// Create validates the payload and stores a Pending itinerary for the owner.
func (s *ItineraryService) Create(ctx context.Context, owner *domain.Identity, input ItineraryInput) (*domain.Itinerary, error) {
	if owner == nil {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}

	problems := fieldErrors{}
	itinerary := &domain.Itinerary{
		UserID:      owner.ID,
		FromCity:    problems.requireString("from_city", input.FromCity, maxCityLength),
		ToCity:      problems.requireString("to_city", input.ToCity, maxCityLength),
		StartDate:   problems.requireDate("start_date", input.StartDate),
		EndDate:     problems.requireDate("end_date", input.EndDate),
		Purpose:     problems.requireString("purpose", input.Purpose, maxPurposeLength),
		Status:      domain.ItineraryStatusPending,
		Type:        domain.TravelTypeDomestic,
		Mode:        domain.TravelModeFlight,
		RequestDate: s.today(),
	}
	if input.Type != nil {
		itinerary.Type = domain.TravelType(problems.checkChoice("type", *input.Type, travelTypeChoices()))
	}
	if input.Mode != nil {
		itinerary.Mode = domain.TravelMode(problems.checkChoice("mode", *input.Mode, travelModeChoices()))
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	if err := s.itineraries.Create(ctx, itinerary); err != nil {
		return nil, err
	}
	s.decorate(ctx, owner, itinerary)

	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventItineraryCreated,
		ActorID:     owner.ID,
		ItineraryID: itinerary.ID,
		Payload: events.ItineraryCreatedPayload{
			FromCity: itinerary.FromCity,
			ToCity:   itinerary.ToCity,
			Type:     itinerary.Type,
			Mode:     itinerary.Mode,
		},
	})
	return itinerary, nil
}

// List returns one page of the owner's itineraries, newest request first.
func (s *ItineraryService) List(ctx context.Context, owner *domain.Identity, req PageRequest) (*ItineraryPage, error) {
	if owner == nil {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	req = req.Normalize()
	if req.Page < 1 {
		return nil, NewInvalidPageError()
	}

	items, total, err := s.itineraries.ListByOwner(ctx, owner.ID, req.PageSize, req.Offset())
	if err != nil {
		return nil, err
	}
	last := lastPage(total, req.PageSize)
	if req.Page > last {
		return nil, NewInvalidPageError()
	}

	employee := s.employeeFor(ctx, owner.ID)
	for i := range items {
		items[i].Owner = owner
		items[i].Employee = employee
	}
	return &ItineraryPage{
		Items:    items,
		Count:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasNext:  req.Page < last,
		HasPrev:  req.Page > 1,
	}, nil
}

// Retrieve returns the itinerary when the owner holds it.
func (s *ItineraryService) Retrieve(ctx context.Context, owner *domain.Identity, id int64) (*domain.Itinerary, error) {
	if owner == nil {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	itinerary, err := s.itineraries.GetForOwner(ctx, id, owner.ID)
	if err != nil {
		return nil, notFound(err)
	}
	s.decorate(ctx, owner, itinerary)
	return itinerary, nil
}

// Update applies the supplied fields. Status is never changed here.
func (s *ItineraryService) Update(ctx context.Context, owner *domain.Identity, id int64, input ItineraryInput) (*domain.Itinerary, error) {
	if owner == nil {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}

	var (
		updated *domain.Itinerary
		changed []string
	)
	err := s.tx.RunItinerary(ctx, func(repo repository.ItineraryRepository) error {
		current, err := repo.LockForOwner(ctx, id, owner.ID)
		if err != nil {
			return notFound(err)
		}
		apply, fields, err := parseUpdate(input)
		if err != nil {
			return err
		}
		changed = fields
		for _, fn := range apply {
			fn(current)
		}
		if err := repo.Update(ctx, current); err != nil {
			return notFound(err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.decorate(ctx, owner, updated)

	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventItineraryUpdated,
		ActorID:     owner.ID,
		ItineraryID: updated.ID,
		Payload:     events.ItineraryUpdatedPayload{Fields: changed},
	})
	return updated, nil
}

// Withdraw moves a non-terminal itinerary to Withdrawn.
func (s *ItineraryService) Withdraw(ctx context.Context, owner *domain.Identity, id int64) (*domain.Itinerary, error) {
	if owner == nil {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}

	var (
		withdrawn *domain.Itinerary
		previous  domain.ItineraryStatus
	)
	err := s.tx.RunItinerary(ctx, func(repo repository.ItineraryRepository) error {
		current, err := repo.LockForOwner(ctx, id, owner.ID)
		if err != nil {
			return notFound(err)
		}
		if !current.CanWithdraw() {
			return apperrors.NewInvalidTransition("Cannot withdraw", map[string]any{
				"status": string(current.Status),
			})
		}
		previous = current.Status
		current.Status = domain.ItineraryStatusWithdrawn
		if err := repo.Update(ctx, current); err != nil {
			return notFound(err)
		}
		withdrawn = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.decorate(ctx, owner, withdrawn)

	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventItineraryWithdrawn,
		ActorID:     owner.ID,
		ItineraryID: withdrawn.ID,
		Payload: events.ItineraryStatusPayload{
			OldStatus: previous,
			NewStatus: withdrawn.Status,
		},
	})
	return withdrawn, nil
}

// Delete removes the owner's itinerary.
func (s *ItineraryService) Delete(ctx context.Context, owner *domain.Identity, id int64) error {
	if owner == nil {
		return apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	if err := s.itineraries.DeleteForOwner(ctx, id, owner.ID); err != nil {
		return notFound(err)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventItineraryDeleted,
		ActorID:     owner.ID,
		ItineraryID: id,
	})
	return nil
}

// parseUpdate validates the supplied fields and returns setters for them.
// Call it only after the owner-scoped lookup succeeded.
func parseUpdate(input ItineraryInput) ([]func(*domain.Itinerary), []string, error) {
	problems := fieldErrors{}
	var changed []string
	apply := make([]func(*domain.Itinerary), 0, 7)

	if input.FromCity != nil {
		v := problems.checkString("from_city", *input.FromCity, maxCityLength)
		apply = append(apply, func(it *domain.Itinerary) { it.FromCity = v })
		changed = append(changed, "from_city")
	}
	if input.ToCity != nil {
		v := problems.checkString("to_city", *input.ToCity, maxCityLength)
		apply = append(apply, func(it *domain.Itinerary) { it.ToCity = v })
		changed = append(changed, "to_city")
	}
	if input.StartDate != nil {
		v := problems.checkDate("start_date", *input.StartDate)
		apply = append(apply, func(it *domain.Itinerary) { it.StartDate = v })
		changed = append(changed, "start_date")
	}
	if input.EndDate != nil {
		v := problems.checkDate("end_date", *input.EndDate)
		apply = append(apply, func(it *domain.Itinerary) { it.EndDate = v })
		changed = append(changed, "end_date")
	}
	if input.Purpose != nil {
		v := problems.checkString("purpose", *input.Purpose, maxPurposeLength)
		apply = append(apply, func(it *domain.Itinerary) { it.Purpose = v })
		changed = append(changed, "purpose")
	}
	if input.Type != nil {
		v := domain.TravelType(problems.checkChoice("type", *input.Type, travelTypeChoices()))
		apply = append(apply, func(it *domain.Itinerary) { it.Type = v })
		changed = append(changed, "type")
	}
	if input.Mode != nil {
		v := domain.TravelMode(problems.checkChoice("mode", *input.Mode, travelModeChoices()))
		apply = append(apply, func(it *domain.Itinerary) { it.Mode = v })
		changed = append(changed, "mode")
	}
	if err := problems.err(); err != nil {
		return nil, nil, err
	}
	return apply, changed, nil
}

func (s *ItineraryService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *ItineraryService) decorate(ctx context.Context, owner *domain.Identity, itinerary *domain.Itinerary) {
	itinerary.Owner = owner
	itinerary.Employee = s.employeeFor(ctx, owner.ID)
}

func (s *ItineraryService) employeeFor(ctx context.Context, userID int64) *domain.Employee {
	if s.employees == nil {
		return nil
	}
	employee, err := s.employees.GetByUserID(ctx, userID)
	if err != nil {
		return nil
	}
	return employee
}

// notFound hides whether a record is missing or owned by someone else.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("Itinerary", nil)
	}
	return err
}

func travelTypeChoices() []string {
	choices := make([]string, 0, len(domain.ValidTravelTypes))
	for _, t := range domain.ValidTravelTypes {
		choices = append(choices, string(t))
	}
	return choices
}

func travelModeChoices() []string {
	choices := make([]string, 0, len(domain.ValidTravelModes))
	for _, m := range domain.ValidTravelModes {
		choices = append(choices, string(m))
	}
	return choices
}
