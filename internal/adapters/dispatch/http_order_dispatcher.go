package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"delivery-schedule-service/internal/domain"
)

// HTTPOrderDispatcher hands materialized occurrences to the order-creation
// collaborator over HTTP. From the engine's perspective the call is
// fire-and-forget-with-retry: the occurrence row is already committed, so
// a hand-off failure is reported and retried downstream, never by the
// scheduler itself.
type HTTPOrderDispatcher struct {
	url     string
	session *http.Client
}

func NewHTTPOrderDispatcher(url string) (*HTTPOrderDispatcher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("order dispatcher: url must be non-empty")
	}

	return &HTTPOrderDispatcher{
		url:     url,
		session: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type orderRequest struct {
	SubscriptionID int     `json:"subscription_id"`
	DeliveryDate   string  `json:"delivery_date"`
	ZoneID         int     `json:"zone_id"`
	WindowStart    *string `json:"window_start,omitempty"`
	WindowEnd      *string `json:"window_end,omitempty"`
}

func (d *HTTPOrderDispatcher) Dispatch(ctx context.Context, occ domain.DeliveryOccurrence) error {
	req := orderRequest{
		SubscriptionID: occ.SubscriptionID,
		DeliveryDate:   occ.Date.Format("2006-01-02"),
		ZoneID:         occ.ZoneID,
	}
	if occ.Window != nil {
		req.WindowStart = &occ.Window.Start
		req.WindowEnd = &occ.Window.End
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("dispatch order: marshal request: %w", err)
	}

	resp, err := d.doWithRetry(ctx, func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Accept", "application/json")
		return r, nil
	})
	if err != nil {
		return fmt.Errorf("dispatch order: subscription %d date %s: %w",
			occ.SubscriptionID, occ.Date.Format("2006-01-02"), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (d *HTTPOrderDispatcher) do(req *http.Request) (*http.Response, error) {
	resp, err := d.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 5xx responses)
// using exponential backoff while respecting context cancellation.
func (d *HTTPOrderDispatcher) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := d.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
