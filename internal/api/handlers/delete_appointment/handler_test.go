package delete_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	deleted []uuid.UUID
	err     error
}

func (f *fakeService) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func serve(svc *fakeService, id string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/appointments/{appointmentId}", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodDelete)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/appointments/"+id, nil))
	return rec
}

func TestHandle(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{}

	rec := serve(svc, id.String())

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uuid.UUID{id}, svc.deleted)

	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "x").Code)
	assert.Equal(t, http.StatusNotFound, serve(&fakeService{err: appointments.ErrAppointmentNotFound}, uuid.NewString()).Code)
}
