package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openlearnhq/enterprise-catalog/config"
)

// EnterpriseAPIService exposes the enterprise customer data this
// service needs but does not own
type EnterpriseAPIService interface {
	CustomerLastModified(ctx context.Context, enterpriseUUID uuid.UUID) (*time.Time, error)
}

// EnterpriseAPIServiceImpl implements EnterpriseAPIService against the
// LMS enterprise API
type EnterpriseAPIServiceImpl struct {
	config *config.EnterpriseConfig
	client *http.Client
}

type enterpriseCustomerResponse struct {
	UUID             string     `json:"uuid"`
	Name             string     `json:"name"`
	LastModifiedDate *time.Time `json:"last_modified_date"`
}

// NewEnterpriseAPIService creates a new enterprise API service instance
func NewEnterpriseAPIService(cfg *config.EnterpriseConfig) EnterpriseAPIService {
	return &EnterpriseAPIServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.APITimeout,
		},
	}
}

// CustomerLastModified fetches the enterprise customer's last
// modification time. A missing customer yields nil rather than an
// error; enrichment treats it as an unknown change source.
func (s *EnterpriseAPIServiceImpl) CustomerLastModified(ctx context.Context, enterpriseUUID uuid.UUID) (*time.Time, error) {
	endpoint := fmt.Sprintf("%s/enterprise/api/v1/enterprise-customer/%s/", s.config.LMSBaseURL, enterpriseUUID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build enterprise customer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enterprise customer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enterprise customer request returned status %d", resp.StatusCode)
	}

	var customer enterpriseCustomerResponse
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return nil, fmt.Errorf("failed to decode enterprise customer response: %w", err)
	}

	return customer.LastModifiedDate, nil
}
