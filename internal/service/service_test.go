package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/travel-desk/itinerary-service/internal/auth"
	"github.com/travel-desk/itinerary-service/internal/domain"
	"github.com/travel-desk/itinerary-service/internal/events"
	"github.com/travel-desk/itinerary-service/internal/repository/memory"
)

var fixedNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store        *memory.Store
	dispatcher   events.Dispatcher
	tokens       *auth.TokenManager
	blacklist    *auth.MemoryBlacklist
	auth         *AuthService
	itineraries  *ItineraryService
	provisioning *ProvisioningService
	published    []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore().WithClock(func() time.Time { return fixedNow }),
		dispatcher: events.NewInMemoryDispatcher(),
		tokens:     auth.NewTokenManager("test-secret", "test", 5*time.Minute, time.Hour),
		blacklist:  auth.NewMemoryBlacklist(),
	}
	record := func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	}
	for _, typ := range []events.EventType{
		events.EventIdentityRegistered,
		events.EventIdentityProvisioned,
		events.EventItineraryCreated,
		events.EventItineraryUpdated,
		events.EventItineraryWithdrawn,
		events.EventItineraryDeleted,
	} {
		f.dispatcher.Subscribe(typ, record)
	}

	f.auth = NewAuthService(AuthDependencies{
		IdentityRepo: f.store.Identities(),
		EmployeeRepo: f.store.Employees(),
		Tokens:       f.tokens,
		Blacklist:    f.blacklist,
		Dispatcher:   f.dispatcher,
		BcryptCost:   bcrypt.MinCost,
	})
	f.itineraries = NewItineraryService(ItineraryDependencies{
		ItineraryRepo: f.store.Itineraries(),
		EmployeeRepo:  f.store.Employees(),
		TxRunner:      f.store.TxRunner(),
		Dispatcher:    f.dispatcher,
		Clock:         func() time.Time { return fixedNow },
	})
	f.provisioning = NewProvisioningService(ProvisioningDependencies{
		IdentityRepo: f.store.Identities(),
		EmployeeRepo: f.store.Employees(),
		Dispatcher:   f.dispatcher,
		BcryptCost:   bcrypt.MinCost,
	})
	return f
}

// newIdentity creates an active identity with password "password123".
func (f *fixture) newIdentity(t *testing.T, username string) *domain.Identity {
	t.Helper()
	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	identity := &domain.Identity{Username: username, PasswordHash: hash, IsActive: true}
	require.NoError(t, f.store.Identities().Create(context.Background(), identity))
	return identity
}

func strPtr(s string) *string { return &s }
