package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client клиент справочника клиентов, профессионалов и услуг
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента справочника
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetCustomer получает клиента по ID
func (c *Client) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	var customer Customer
	if err := c.get(ctx, fmt.Sprintf("/internal/customers/%s", id), ErrCustomerNotFound, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetProfessional получает профессионала по ID
func (c *Client) GetProfessional(ctx context.Context, id uuid.UUID) (*Professional, error) {
	var professional Professional
	if err := c.get(ctx, fmt.Sprintf("/internal/professionals/%s", id), ErrProfessionalNotFound, &professional); err != nil {
		return nil, err
	}
	return &professional, nil
}

// GetService получает услугу по ID
func (c *Client) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	var service Service
	if err := c.get(ctx, fmt.Sprintf("/internal/services/%s", id), ErrServiceNotFound, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// GetAvailabilityProfile получает рабочее окно и длительность сеанса профессионала
func (c *Client) GetAvailabilityProfile(ctx context.Context, professionalID uuid.UUID) (*AvailabilityProfile, error) {
	var profile AvailabilityProfile
	path := fmt.Sprintf("/internal/professionals/%s/availability", professionalID)
	if err := c.get(ctx, path, ErrProfileNotFound, &profile); err != nil {
		return nil, err
	}
	if profile.ProfessionalID == uuid.Nil {
		profile.ProfessionalID = professionalID
	}
	return &profile, nil
}

// ListProfessionalIDs получает идентификаторы всех профессионалов
// Используется фоновой материализацией слотов
func (c *Client) ListProfessionalIDs(ctx context.Context) ([]uuid.UUID, error) {
	var list professionalList
	if err := c.get(ctx, "/internal/professionals", ErrProfessionalListNotFound, &list); err != nil {
		return nil, err
	}
	c.log.Info("Directory: fetched %d professional ids", len(list.IDs))
	return list.IDs, nil
}

func (c *Client) get(ctx context.Context, path string, notFound error, out interface{}) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %w", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return fmt.Errorf("%w: invalid identifier format for %s", ErrInvalidResponse, path)
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
