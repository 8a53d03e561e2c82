package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

// Service сервис чтения и удаления записей
type Service struct {
	appointmentRepo AppointmentRepository
	directoryRepo   DirectoryRepository
	metrics         Metrics
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	directoryRepo DirectoryRepository,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		directoryRepo:   directoryRepo,
		metrics:         metrics,
		logger:          logger,
	}
}

// FindOne получает запись по ID вместе с запрошенными связями
func (s *Service) FindOne(ctx context.Context, id int64, include domain.IncludeSet) (*models.AppointmentResponse, error) {
	s.logger.Info("FindOne: fetching appointment id=%d", id)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("FindOne: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("FindOne: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: FindOne - repository error: %v", ErrInternal, err)
	}

	if err := s.hydrate(ctx, []*domain.Appointment{appt}, include); err != nil {
		s.logger.Error("FindOne: failed to load relations for appointment id=%d: %v", id, err)
		return nil, err
	}

	return models.FromDomainAppointment(appt), nil
}

// List возвращает страницу записей с фильтрами, сортировкой и общим количеством
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	query, err := req.ToDomainQuery()
	if err != nil {
		s.logger.Warn("List: invalid query: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.logger.Info("List: page=%d, limit=%d, sort=%s %s", query.Page, query.Limit, query.SortBy, query.SortOrder)

	items, total, err := s.appointmentRepo.List(ctx, query)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	if err := s.hydrate(ctx, items, query.Include); err != nil {
		s.logger.Error("List: failed to load relations: %v", err)
		return nil, err
	}

	s.logger.Info("List: fetched %d of %d appointments", len(items), total)
	return &models.AppointmentListResponse{
		Appointments: models.FromDomainAppointments(items),
		Total:        total,
		Page:         query.Page,
		Limit:        query.Limit,
	}, nil
}

// FindByClient возвращает все записи клиента, от новых к старым
func (s *Service) FindByClient(ctx context.Context, clientID int64, include domain.IncludeSet) ([]models.AppointmentResponse, error) {
	s.logger.Info("FindByClient: fetching appointments for client=%d", clientID)

	if _, err := s.directoryRepo.GetClient(ctx, clientID); err != nil {
		if errors.Is(err, directoryRepo.ErrClientNotFound) {
			s.logger.Warn("FindByClient: client id=%d not found", clientID)
			return nil, ErrClientNotFound
		}
		s.logger.Error("FindByClient: failed to get client id=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: failed to get client: %v", ErrInternal, err)
	}

	items, err := s.appointmentRepo.GetByClientID(ctx, clientID)
	if err != nil {
		s.logger.Error("FindByClient: repository error for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: FindByClient - repository error: %v", ErrInternal, err)
	}

	if err := s.hydrate(ctx, items, include); err != nil {
		s.logger.Error("FindByClient: failed to load relations: %v", err)
		return nil, err
	}

	s.logger.Info("FindByClient: fetched %d appointments for client=%d", len(items), clientID)
	return models.FromDomainAppointments(items), nil
}

// Remove удаляет запись безвозвратно
func (s *Service) Remove(ctx context.Context, id int64) error {
	s.logger.Info("Remove: deleting appointment id=%d", id)

	if err := s.appointmentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Remove: appointment id=%d not found", id)
			s.metrics.ObserveAppointment("remove", metrics.OutcomeNotFound)
			return ErrAppointmentNotFound
		}
		s.logger.Error("Remove: repository error for appointment id=%d: %v", id, err)
		s.metrics.ObserveAppointment("remove", metrics.OutcomeError)
		return fmt.Errorf("%w: Remove - repository error: %v", ErrInternal, err)
	}

	s.metrics.ObserveAppointment("remove", metrics.OutcomeOK)
	s.logger.Info("Remove: successfully deleted appointment id=%d", id)
	return nil
}

// hydrate подгружает связи пачкой: один запрос на каждый тип связи
func (s *Service) hydrate(ctx context.Context, items []*domain.Appointment, include domain.IncludeSet) error {
	if include == domain.IncludeNone || len(items) == 0 {
		return nil
	}

	var clientIDs, staffIDs, treatmentIDs []int64
	for _, a := range items {
		clientIDs = append(clientIDs, a.ClientID)
		staffIDs = append(staffIDs, a.StaffID)
		treatmentIDs = append(treatmentIDs, a.TreatmentID)
	}

	if include.Has(domain.IncludeClient) {
		clients, err := s.directoryRepo.GetClientsByIDs(ctx, clientIDs)
		if err != nil {
			return fmt.Errorf("%w: failed to load clients: %v", ErrInternal, err)
		}
		for _, a := range items {
			a.Client = clients[a.ClientID]
		}
	}

	if include.Has(domain.IncludeStaff) {
		staff, err := s.directoryRepo.GetStaffByIDs(ctx, staffIDs)
		if err != nil {
			return fmt.Errorf("%w: failed to load staff: %v", ErrInternal, err)
		}
		for _, a := range items {
			a.Staff = staff[a.StaffID]
		}
	}

	if include.Has(domain.IncludeTreatment) {
		treatments, err := s.directoryRepo.GetTreatmentsByIDs(ctx, treatmentIDs)
		if err != nil {
			return fmt.Errorf("%w: failed to load treatments: %v", ErrInternal, err)
		}
		for _, a := range items {
			a.Treatment = treatments[a.TreatmentID]
		}
	}

	return nil
}
