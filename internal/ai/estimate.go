package ai

import (
	"context"
	"fmt"
)

// EstimateRequest describes a project to price.
type EstimateRequest struct {
	ProjectType string  `json:"projectType"`
	Description string  `json:"description"`
	HourlyRate  float64 `json:"hourlyRate"`
	Experience  string  `json:"experience"`
	Language    string  `json:"language"`
}

// Estimate is the service's price and effort range.
type Estimate struct {
	MinPrice    float64 `json:"minPrice"`
	MaxPrice    float64 `json:"maxPrice"`
	Currency    string  `json:"currency"`
	MinHours    float64 `json:"minHours"`
	MaxHours    float64 `json:"maxHours"`
	Complexity  string  `json:"complexity"`
	Explanation string  `json:"explanation"`
	Error       string  `json:"error,omitempty"`
}

// EstimateCost prices a project.
func (c *Client) EstimateCost(ctx context.Context, req EstimateRequest) (Estimate, error) {
	data, err := c.post(ctx, "/estimate-cost", req)
	if err != nil {
		return Estimate{}, err
	}

	var est Estimate
	if err := decode(data, &est); err != nil {
		return Estimate{}, err
	}
	if est.Error != "" {
		return Estimate{}, fmt.Errorf("%w: %s", ErrService, est.Error)
	}
	if est.MaxPrice < est.MinPrice || est.MaxHours < est.MinHours {
		return Estimate{}, fmt.Errorf("%w: inverted range", ErrMalformedResponse)
	}
	return est, nil
}
