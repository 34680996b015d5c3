package providers

import (
	"context"
	"fmt"
	"net/url"
	"slotbook/pkg/client"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"time"
)

type scheduleResponse struct {
	Days map[string][]model.Shift `json:"days"`
}

// HTTPScheduleProvider reads per-date shifts from a JSON schedule service:
//
//	GET {base}/schedules/{externalID}?start=2024-03-11&end=2024-03-17
//	{"days": {"2024-03-11": [{"start": "09:00", "end": "17:00"}], "2024-03-12": []}}
type HTTPScheduleProvider struct {
	client *client.HttpClient
}

func NewHTTPScheduleProvider(baseURL string, timeout time.Duration) *HTTPScheduleProvider {
	return &HTTPScheduleProvider{client: client.NewHttpClient(baseURL, timeout)}
}

func (p *HTTPScheduleProvider) GetSchedule(ctx context.Context, externalID string, start, end time.Time) (DaySchedule, error) {
	query := url.Values{}
	query.Set("start", start.Format(period.ISODateLayout))
	query.Set("end", end.Format(period.ISODateLayout))

	resp, err := p.client.GET(ctx, "/schedules/"+url.PathEscape(externalID), query)
	if err != nil {
		return nil, fmt.Errorf("schedule request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("schedule service returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
	}

	var body scheduleResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return nil, fmt.Errorf("failed to decode schedule response: %w", err)
	}
	if body.Days == nil {
		return DaySchedule{}, nil
	}
	return DaySchedule(body.Days), nil
}
