package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

var (
	customerID     = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	professionalID = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	serviceID      = uuid.MustParse("33333333-3333-4333-8333-333333333333")
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	mux.HandleFunc("/internal/customers/"+customerID.String(), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Customer{ID: customerID, Name: "Ana", Email: "ana@example.com"})
	})
	mux.HandleFunc("/internal/professionals/"+professionalID.String(), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Professional{ID: professionalID, Name: "Dr. Lee"})
	})
	mux.HandleFunc("/internal/professionals/"+professionalID.String()+"/availability", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"workStartTime": "09:00",
			"workEndTime":   "12:00",
			"breakDuration": 60,
		})
	})
	mux.HandleFunc("/internal/services/"+serviceID.String(), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Service{ID: serviceID, Name: "Consultation"})
	})
	mux.HandleFunc("/internal/professionals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, professionalList{IDs: []uuid.UUID{professionalID}})
	})
	mux.HandleFunc("/internal/services/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Lookups(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, logger.NewNop())
	ctx := context.Background()

	customer, err := client.GetCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", customer.Name)

	professional, err := client.GetProfessional(ctx, professionalID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Lee", professional.Name)

	service, err := client.GetService(ctx, serviceID)
	require.NoError(t, err)
	assert.Equal(t, "Consultation", service.Name)

	ids, err := client.ListProfessionalIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{professionalID}, ids)
}

func TestClient_AvailabilityProfile(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, logger.NewNop())

	profile, err := client.GetAvailabilityProfile(context.Background(), professionalID)
	require.NoError(t, err)
	assert.Equal(t, professionalID, profile.ProfessionalID)

	p, err := profile.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "09:00", p.WorkStartTime.String())
	assert.Equal(t, "12:00", p.WorkEndTime.String())
	assert.Equal(t, time.Hour, p.SessionDuration)
}

func TestClient_NotFound(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, logger.NewNop())
	ctx := context.Background()
	unknown := uuid.New()

	_, err := client.GetCustomer(ctx, unknown)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = client.GetProfessional(ctx, unknown)
	assert.ErrorIs(t, err, ErrProfessionalNotFound)

	_, err = client.GetService(ctx, unknown)
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.NotErrorIs(t, err, ErrCustomerNotFound)

	_, err = client.GetAvailabilityProfile(ctx, unknown)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestClient_ProfessionalListNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	client := NewClient(srv.URL, time.Second, logger.NewNop())

	_, err := client.ListProfessionalIDs(context.Background())

	assert.ErrorIs(t, err, ErrProfessionalListNotFound)
	assert.NotErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, logger.NewNop())

	err := client.get(context.Background(), "/internal/services/broken", ErrServiceNotFound, &Service{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_Unreachable(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	client := NewClient(url, 200*time.Millisecond, logger.NewNop())
	_, err := client.GetCustomer(context.Background(), customerID)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestAvailabilityProfile_ToDomainInvalid(t *testing.T) {
	tests := []AvailabilityProfile{
		{WorkStartTime: "nine", WorkEndTime: "12:00", BreakDuration: 30},
		{WorkStartTime: "09:00", WorkEndTime: "noon", BreakDuration: 30},
		{WorkStartTime: "12:00", WorkEndTime: "09:00", BreakDuration: 30},
		{WorkStartTime: "09:00", WorkEndTime: "12:00", BreakDuration: 0},
	}
	for _, p := range tests {
		_, err := p.ToDomain()
		assert.ErrorIs(t, err, domain.ErrInvalidAvailabilityWindow)
	}
}
