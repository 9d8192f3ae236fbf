package appointments

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// lookup запоминает ответы справочника в пределах одного запроса
type lookup struct {
	customers     map[uuid.UUID]*directory.Customer
	professionals map[uuid.UUID]*directory.Professional
	services      map[uuid.UUID]*directory.Service
}

func newLookup() *lookup {
	return &lookup{
		customers:     make(map[uuid.UUID]*directory.Customer),
		professionals: make(map[uuid.UUID]*directory.Professional),
		services:      make(map[uuid.UUID]*directory.Service),
	}
}

// hydrate дополняет запись именами участников
// Ошибки справочника не прерывают чтение: поля остаются пустыми.
func (s *Service) hydrate(ctx context.Context, a *domain.Appointment, l *lookup) *models.AppointmentResponse {
	resp := models.FromDomainAppointment(a)

	if c := cached(l.customers, a.CustomerID, func() (*directory.Customer, error) {
		return s.directory.GetCustomer(ctx, a.CustomerID)
	}, s.logger); c != nil {
		resp.CustomerName = c.Name
	}
	if p := cached(l.professionals, a.ProfessionalID, func() (*directory.Professional, error) {
		return s.directory.GetProfessional(ctx, a.ProfessionalID)
	}, s.logger); p != nil {
		resp.ProfessionalName = p.Name
	}
	if svc := cached(l.services, a.ServiceID, func() (*directory.Service, error) {
		return s.directory.GetService(ctx, a.ServiceID)
	}, s.logger); svc != nil {
		resp.ServiceName = svc.Name
		resp.ServicePrice = svc.Price
	}

	return resp
}

func cached[T any](memo map[uuid.UUID]*T, id uuid.UUID, fetch func() (*T, error), log Logger) *T {
	if v, ok := memo[id]; ok {
		return v
	}
	v, err := fetch()
	if err != nil {
		log.Warn("hydrate: directory lookup id=%s failed: %v", id, err)
		v = nil
	}
	memo[id] = v
	return v
}
