package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/travel-desk/itinerary-service/internal/auth"
	"github.com/travel-desk/itinerary-service/internal/domain"
	"github.com/travel-desk/itinerary-service/internal/events"
	"github.com/travel-desk/itinerary-service/internal/repository"
)

const defaultPasswordSuffix = "@123"

// Outcome is the per-record result of a batch operation.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// RecordResult reports what happened to one employee.
type RecordResult struct {
	EmployeeID string
	Username   string
	Outcome    Outcome
	Err        error
}

// BatchReport is the per-record outcomes plus totals.
type BatchReport struct {
	Records []RecordResult
	Created int
	Skipped int
	Failed  int
}

func (r *BatchReport) record(result RecordResult) {
	r.Records = append(r.Records, result)
	switch result.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Summary renders the totals line.
func (r *BatchReport) Summary() string {
	return fmt.Sprintf("created=%d skipped=%d failed=%d", r.Created, r.Skipped, r.Failed)
}

// ProvisioningService imports employees and creates their accounts.
type ProvisioningService struct {
	identities repository.IdentityRepository
	employees  repository.EmployeeRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// ProvisioningDependencies bundles collaborators for provisioning.
type ProvisioningDependencies struct {
	IdentityRepo repository.IdentityRepository
	EmployeeRepo repository.EmployeeRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	BcryptCost   int
}

// NewProvisioningService constructs the service.
func NewProvisioningService(deps ProvisioningDependencies) *ProvisioningService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisioningService{
		identities: deps.IdentityRepo,
		employees:  deps.EmployeeRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: deps.BcryptCost,
	}
}

// DeriveUsername lowercases first and last name joined without a separator.
func DeriveUsername(firstName, lastName string) string {
	return strings.ToLower(firstName + lastName)
}

// DerivePassword capitalizes the first name and appends the fixed suffix.
func DerivePassword(firstName string) string {
	runes := []rune(strings.ToLower(firstName))
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes) + defaultPasswordSuffix
}

// ImportEmployees stores new employee rows; rows whose employee_id exists are skipped.
func (s *ProvisioningService) ImportEmployees(ctx context.Context, rows []domain.Employee) *BatchReport {
	report := &BatchReport{}
	for i := range rows {
		employee := rows[i]
		result := RecordResult{EmployeeID: employee.EmployeeID}

		_, err := s.employees.GetByEmployeeID(ctx, employee.EmployeeID)
		switch {
		case err == nil:
			result.Outcome = OutcomeSkipped
		case !errors.Is(err, pgx.ErrNoRows):
			result.Outcome, result.Err = OutcomeFailed, err
		default:
			employee.UserID = nil
			if err := s.employees.Create(ctx, &employee); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					result.Outcome = OutcomeSkipped
				} else {
					result.Outcome, result.Err = OutcomeFailed, err
				}
			} else {
				result.Outcome = OutcomeCreated
			}
		}

		s.logResult("employee import", result)
		report.record(result)
	}
	return report
}

// Provision creates an identity for every employee whose derived username is free.
func (s *ProvisioningService) Provision(ctx context.Context) (*BatchReport, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{}
	for i := range employees {
		result := s.provisionOne(ctx, &employees[i])
		s.logResult("provision", result)
		report.record(result)
	}
	s.logger.Info("provisioning finished",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *ProvisioningService) provisionOne(ctx context.Context, employee *domain.Employee) RecordResult {
	username := DeriveUsername(employee.FirstName, employee.LastName)
	result := RecordResult{EmployeeID: employee.EmployeeID, Username: username}
	if strings.TrimSpace(username) == "" {
		result.Outcome, result.Err = OutcomeFailed, errors.New("employee has no name to derive a username from")
		return result
	}

	exists, err := s.identities.ExistsByUsername(ctx, username)
	if err != nil {
		result.Outcome, result.Err = OutcomeFailed, err
		return result
	}
	if exists {
		result.Outcome = OutcomeSkipped
		return result
	}

	hash, err := auth.HashPassword(DerivePassword(employee.FirstName), s.bcryptCost)
	if err != nil {
		result.Outcome, result.Err = OutcomeFailed, err
		return result
	}
	identity := &domain.Identity{
		Username:     username,
		Email:        employee.Email,
		PasswordHash: hash,
		FirstName:    employee.FirstName,
		LastName:     employee.LastName,
		IsActive:     true,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			result.Outcome = OutcomeSkipped
			return result
		}
		result.Outcome, result.Err = OutcomeFailed, err
		return result
	}

	if employee.UserID == nil {
		if err := s.employees.LinkUser(ctx, employee.ID, identity.ID); err != nil {
			s.logger.Warn("employee link failed",
				zap.String("employee_id", employee.EmployeeID),
				zap.Int64("user_id", identity.ID),
				zap.Error(err))
		}
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventIdentityProvisioned,
		ActorID: identity.ID,
		Payload: events.IdentityPayload{Username: username, EmployeeID: employee.EmployeeID},
	})
	result.Outcome = OutcomeCreated
	return result
}

func (s *ProvisioningService) logResult(op string, result RecordResult) {
	fields := []zap.Field{
		zap.String("employee_id", result.EmployeeID),
		zap.String("outcome", string(result.Outcome)),
	}
	if result.Username != "" {
		fields = append(fields, zap.String("username", result.Username))
	}
	if result.Err != nil {
		s.logger.Error(op, append(fields, zap.Error(result.Err))...)
		return
	}
	s.logger.Info(op, fields...)
}
