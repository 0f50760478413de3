package client

import "context"

// AnalyticsService handles forecasting and trend analysis API calls
type AnalyticsService struct {
	client *Client
}

// Forecast generates a cost projection for a scope and history window
func (s *AnalyticsService) Forecast(ctx context.Context, req ForecastRequest) (*Forecast, error) {
	var forecast Forecast
	if err := s.client.doRequest(ctx, "POST", "/api/v1/forecasts", req, &forecast); err != nil {
		return nil, err
	}
	return &forecast, nil
}

// Trend summarizes direction, growth and volatility for a window
func (s *AnalyticsService) Trend(ctx context.Context, req TrendRequest) (*Trend, error) {
	var trend Trend
	if err := s.client.doRequest(ctx, "POST", "/api/v1/trends", req, &trend); err != nil {
		return nil, err
	}
	return &trend, nil
}
