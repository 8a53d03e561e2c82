package update_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
)

// relations сущности, загруженные при проверке patch
type relations struct {
	client    *domain.Client
	staff     *domain.Staff
	treatment *domain.Treatment
}

// loadPatchedRelations проверяет, что клиент, сотрудник и услуга из patch существуют
func (uc *UseCase) loadPatchedRelations(ctx context.Context, req *Request) (relations, error) {
	var rel relations

	if req.ClientID != nil {
		client, err := uc.clientRepo.GetClient(ctx, *req.ClientID)
		if err != nil {
			if errors.Is(err, directoryRepo.ErrClientNotFound) {
				uc.logger.Warn("UpdateAppointment: client id=%d not found", *req.ClientID)
				return rel, ErrClientNotFound
			}
			uc.logger.Error("UpdateAppointment: failed to get client id=%d: %v", *req.ClientID, err)
			return rel, fmt.Errorf("%w: failed to get client: %v", ErrInternal, err)
		}
		rel.client = client
	}

	if req.StaffID != nil {
		staff, err := uc.staffRepo.GetStaff(ctx, *req.StaffID)
		if err != nil {
			if errors.Is(err, directoryRepo.ErrStaffNotFound) {
				uc.logger.Warn("UpdateAppointment: staff id=%d not found", *req.StaffID)
				return rel, ErrStaffNotFound
			}
			uc.logger.Error("UpdateAppointment: failed to get staff id=%d: %v", *req.StaffID, err)
			return rel, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
		}
		rel.staff = staff
	}

	if req.TreatmentID != nil {
		treatment, err := uc.treatmentRepo.GetTreatment(ctx, *req.TreatmentID)
		if err != nil {
			if errors.Is(err, directoryRepo.ErrTreatmentNotFound) {
				uc.logger.Warn("UpdateAppointment: treatment id=%d not found", *req.TreatmentID)
				return rel, ErrTreatmentNotFound
			}
			uc.logger.Error("UpdateAppointment: failed to get treatment id=%d: %v", *req.TreatmentID, err)
			return rel, fmt.Errorf("%w: failed to get treatment: %v", ErrInternal, err)
		}
		rel.treatment = treatment
	}

	return rel, nil
}

// attachRelations заполняет связи обновленной записи для ответа и уведомлений.
// Ошибки справочника не влияют на уже сохраненное изменение.
func (uc *UseCase) attachRelations(ctx context.Context, appt *domain.Appointment, rel relations) {
	appt.Client, appt.Staff, appt.Treatment = rel.client, rel.staff, rel.treatment

	if appt.Client == nil {
		if client, err := uc.clientRepo.GetClient(ctx, appt.ClientID); err == nil {
			appt.Client = client
		} else {
			uc.logger.Warn("UpdateAppointment: failed to load client id=%d: %v", appt.ClientID, err)
		}
	}
	if appt.Staff == nil {
		if staff, err := uc.staffRepo.GetStaff(ctx, appt.StaffID); err == nil {
			appt.Staff = staff
		} else {
			uc.logger.Warn("UpdateAppointment: failed to load staff id=%d: %v", appt.StaffID, err)
		}
	}
	if appt.Treatment == nil {
		if treatment, err := uc.treatmentRepo.GetTreatment(ctx, appt.TreatmentID); err == nil {
			appt.Treatment = treatment
		} else {
			uc.logger.Warn("UpdateAppointment: failed to load treatment id=%d: %v", appt.TreatmentID, err)
		}
	}
}
