package get_customer_appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	got *models.ListRequest
	err error
}

func (f *fakeService) ListByCustomer(_ context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentListResponse{Appointments: []models.AppointmentResponse{{ID: uuid.New(), Status: "PENDING"}}}, nil
}

func serve(svc *fakeService, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/customers/{customerId}/appointments", NewHandler(svc, logger.NewNop()).Handle)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandle_StatusFilter(t *testing.T) {
	customerID := uuid.New()
	svc := &fakeService{}

	rec := serve(svc, "/customers/"+customerID.String()+"/appointments?status=pending")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, customerID, svc.got.OwnerID)
	require.NotNil(t, svc.got.Status)
	assert.Equal(t, "pending", *svc.got.Status)

	var body models.AppointmentListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Appointments, 1)
}

func TestHandle_NoFilter(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/customers/"+uuid.NewString()+"/appointments")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.got.Status)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "/customers/abc/appointments").Code)
	assert.Equal(t, http.StatusBadRequest,
		serve(&fakeService{err: appointments.ErrInvalidInput}, "/customers/"+uuid.NewString()+"/appointments?status=x").Code)
	assert.Equal(t, http.StatusInternalServerError,
		serve(&fakeService{err: appointments.ErrInternal}, "/customers/"+uuid.NewString()+"/appointments").Code)
}
