package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-desk/itinerary-service/internal/domain"
	"github.com/travel-desk/itinerary-service/internal/events"
	apperrors "github.com/travel-desk/itinerary-service/pkg/util/errorutil"
)

func puneDelhi() ItineraryInput {
	return ItineraryInput{
		FromCity:  strPtr("Pune"),
		ToCity:    strPtr("Delhi"),
		StartDate: strPtr("2025-01-01"),
		EndDate:   strPtr("2025-01-05"),
		Purpose:   strPtr("Client visit"),
	}
}

func TestCreate_DefaultsAndForcedPending(t *testing.T) {
	f := newFixture(t)
	owner := f.newIdentity(t, "u1")

	input := puneDelhi()
	input.Status = strPtr("Approved")
	itinerary, err := f.itineraries.Create(context.Background(), owner, input)
	require.NoError(t, err)

	assert.Equal(t, domain.ItineraryStatusPending, itinerary.Status)
	assert.Equal(t, domain.TravelTypeDomestic, itinerary.Type)
	assert.Equal(t, domain.TravelModeFlight, itinerary.Mode)
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), itinerary.RequestDate)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), itinerary.StartDate)
	assert.Equal(t, owner.ID, itinerary.UserID)
	assert.Same(t, owner, itinerary.Owner)
	assert.Nil(t, itinerary.Employee)

	require.Len(t, f.published, 1)
	assert.Equal(t, events.EventItineraryCreated, f.published[0].Type)
	assert.Equal(t, itinerary.ID, f.published[0].ItineraryID)
}

func TestCreate_ValidationDetails(t *testing.T) {
	f := newFixture(t)
	owner := f.newIdentity(t, "u1")

	_, err := f.itineraries.Create(context.Background(), owner, ItineraryInput{
		FromCity:  strPtr("   "),
		StartDate: strPtr("01/02/2025"),
		EndDate:   strPtr("2025-01-05"),
		Purpose:   strPtr("Trip"),
		Mode:      strPtr("Rocket"),
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Equal(t, msgBlank, domainErr.Details["from_city"])
	assert.Equal(t, msgRequired, domainErr.Details["to_city"])
	assert.Equal(t, msgDateFormat, domainErr.Details["start_date"])
	assert.Contains(t, domainErr.Details, "mode")
	assert.NotContains(t, domainErr.Details, "end_date")
	assert.Empty(t, f.published)
}

func TestCreate_AcceptsEndBeforeStart(t *testing.T) {
	f := newFixture(t)
	owner := f.newIdentity(t, "u1")

	input := puneDelhi()
	input.StartDate, input.EndDate = strPtr("2025-02-10"), strPtr("2025-02-01")
	_, err := f.itineraries.Create(context.Background(), owner, input)
	assert.NoError(t, err)
}

func TestOwnershipIsIndistinguishableFromMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newIdentity(t, "owner")
	other := f.newIdentity(t, "other")

	itinerary, err := f.itineraries.Create(ctx, owner, puneDelhi())
	require.NoError(t, err)
	missingID := itinerary.ID + 100

	for _, id := range []int64{itinerary.ID, missingID} {
		_, retrieveErr := f.itineraries.Retrieve(ctx, other, id)
		_, updateErr := f.itineraries.Update(ctx, other, id, ItineraryInput{Purpose: strPtr("hijack")})
		_, invalidUpdateErr := f.itineraries.Update(ctx, other, id, ItineraryInput{Purpose: strPtr(""), Mode: strPtr("Rocket")})
		_, withdrawErr := f.itineraries.Withdraw(ctx, other, id)
		deleteErr := f.itineraries.Delete(ctx, other, id)

		for _, err := range []error{retrieveErr, updateErr, invalidUpdateErr, withdrawErr, deleteErr} {
			require.Error(t, err)
			assert.Equal(t, apperrors.ToDomainError(err), apperrors.ToDomainError(retrieveErr))
			assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
		}
	}

	stored, err := f.itineraries.Retrieve(ctx, owner, itinerary.ID)
	require.NoError(t, err)
	assert.Equal(t, "Client visit", stored.Purpose)
	assert.Equal(t, domain.ItineraryStatusPending, stored.Status)
}

func TestUpdate_PartialIgnoresStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newIdentity(t, "u1")
	itinerary, err := f.itineraries.Create(ctx, owner, puneDelhi())
	require.NoError(t, err)

	updated, err := f.itineraries.Update(ctx, owner, itinerary.ID, ItineraryInput{
		ToCity: strPtr("Mumbai"),
		Mode:   strPtr("Train"),
		Status: strPtr("Approved"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Pune", updated.FromCity)
	assert.Equal(t, "Mumbai", updated.ToCity)
	assert.Equal(t, domain.TravelModeTrain, updated.Mode)
	assert.Equal(t, domain.ItineraryStatusPending, updated.Status)
	assert.Equal(t, itinerary.RequestDate, updated.RequestDate)

	last := f.published[len(f.published)-1]
	assert.Equal(t, events.EventItineraryUpdated, last.Type)
	assert.Equal(t, events.ItineraryUpdatedPayload{Fields: []string{"to_city", "mode"}}, last.Payload)

	_, err = f.itineraries.Update(ctx, owner, itinerary.ID, ItineraryInput{Purpose: strPtr("")})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestWithdraw_Guard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newIdentity(t, "u1")

	itinerary, err := f.itineraries.Create(ctx, owner, puneDelhi())
	require.NoError(t, err)

	withdrawn, err := f.itineraries.Withdraw(ctx, owner, itinerary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItineraryStatusWithdrawn, withdrawn.Status)

	_, err = f.itineraries.Withdraw(ctx, owner, itinerary.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidTransition))

	for _, status := range []domain.ItineraryStatus{domain.ItineraryStatusCompleted, domain.ItineraryStatusRejected} {
		created, err := f.itineraries.Create(ctx, owner, puneDelhi())
		require.NoError(t, err)
		created.Status = status
		require.NoError(t, f.store.Itineraries().Update(ctx, created))
		before, err := f.itineraries.Retrieve(ctx, owner, created.ID)
		require.NoError(t, err)

		_, err = f.itineraries.Withdraw(ctx, owner, created.ID)
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidTransition))

		after, err := f.itineraries.Retrieve(ctx, owner, created.ID)
		require.NoError(t, err)
		assert.Equal(t, status, after.Status)
		assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	}

	approved, err := f.itineraries.Create(ctx, owner, puneDelhi())
	require.NoError(t, err)
	approved.Status = domain.ItineraryStatusApproved
	require.NoError(t, f.store.Itineraries().Update(ctx, approved))
	_, err = f.itineraries.Withdraw(ctx, owner, approved.ID)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newIdentity(t, "u1")
	itinerary, err := f.itineraries.Create(ctx, owner, puneDelhi())
	require.NoError(t, err)

	require.NoError(t, f.itineraries.Delete(ctx, owner, itinerary.ID))
	_, err = f.itineraries.Retrieve(ctx, owner, itinerary.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.True(t, apperrors.Is(f.itineraries.Delete(ctx, owner, itinerary.ID), apperrors.CodeNotFound))
}

func TestList_PaginationAndScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newIdentity(t, "owner")
	other := f.newIdentity(t, "other")
	employee := &domain.Employee{EmployeeID: "E1", FirstName: "O", LastName: "W", UserID: &owner.ID}
	require.NoError(t, f.store.Employees().Create(ctx, employee))

	for i := 0; i < 12; i++ {
		_, err := f.itineraries.Create(ctx, owner, puneDelhi())
		require.NoError(t, err)
	}
	_, err := f.itineraries.Create(ctx, other, puneDelhi())
	require.NoError(t, err)

	page, err := f.itineraries.List(ctx, owner, PageRequest{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 12, page.Count)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)
	for _, item := range page.Items {
		assert.Equal(t, owner.ID, item.UserID)
		require.NotNil(t, item.Employee)
		assert.Equal(t, "E1", item.Employee.EmployeeID)
	}
	assert.Greater(t, page.Items[0].ID, page.Items[1].ID)

	second, err := f.itineraries.List(ctx, owner, PageRequest{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)
	assert.False(t, second.HasNext)
	assert.True(t, second.HasPrev)

	capped, err := f.itineraries.List(ctx, owner, PageRequest{Page: 1, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, capped.PageSize)
	assert.Len(t, capped.Items, 12)

	_, err = f.itineraries.List(ctx, owner, PageRequest{Page: 3})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	_, err = f.itineraries.List(ctx, owner, PageRequest{Page: 0})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	empty, err := f.itineraries.List(ctx, f.newIdentity(t, "nobody"), PageRequest{Page: 1})
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Empty(t, empty.Items)
}

func TestPageRequest_Normalize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, PageRequest{Page: 1}.Normalize().PageSize)
	assert.Equal(t, DefaultPageSize, PageRequest{Page: 1, PageSize: -5}.Normalize().PageSize)
	assert.Equal(t, MaxPageSize, PageRequest{Page: 1, PageSize: 1000}.Normalize().PageSize)
	assert.Equal(t, 20, PageRequest{Page: 3, PageSize: 10}.Offset())
}
