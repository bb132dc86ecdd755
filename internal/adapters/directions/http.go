package directions

import (
	"context"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"io"
	"net/http"
	"strings"
	"time"
)

// Per-request budget for provider calls. This is the only timeout a
// planning run is subject to.
const defaultTimeout = 10 * time.Second

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do executes req once. Provider errors are not retried: a failed detour
// is simply dropped by the caller.
func do(session *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// stops lists start, the optional waypoint and end in travel order.
func stops(start, end domain.Coordinates, waypoint *domain.Coordinates) []domain.Coordinates {
	out := []domain.Coordinates{start}
	if waypoint != nil {
		out = append(out, *waypoint)
	}
	return append(out, end)
}
