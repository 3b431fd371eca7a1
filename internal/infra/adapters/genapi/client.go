package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"training-plan-wizard/internal/domain/model"
	"training-plan-wizard/internal/domain/ports/adapter"
	"training-plan-wizard/internal/infra/logging"
)

var _ adapter.GenerationService = (*Client)(nil)

// Client implements adapter.GenerationService over the backend's REST API.
type Client struct {
	baseURL string
	token   string // bearer session token, supplied by the external session provider
	client  *http.Client
	log     *zerolog.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, log *zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base url empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

type createJobRequest struct {
	UserID string `json:"user_id"`
	*model.PlanRequest
}

type createJobResponse struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateJob submits the plan request. Not retried on failure: retry policy is
// the caller's decision, and duplicate submissions are a server concern.
func (c *Client) CreateJob(ctx context.Context, userID string, req *model.PlanRequest) (*model.JobHandle, error) {
	body, err := json.Marshal(createJobRequest{UserID: userID, PlanRequest: req})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/v1/training-plans/generate"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.remoteError(resp, "could not start plan generation")
	}

	var out createJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.JobID == "" {
		return nil, errors.New("backend returned no job id")
	}

	created := out.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	logging.With(ctx, c.log).Debug().Str("job_id", out.JobID).Str("status", out.Status).Msg("generation job created")
	return &model.JobHandle{JobID: out.JobID, UserID: userID, CreatedAt: created}, nil
}

func (c *Client) GetJobStatus(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error) {
	u := fmt.Sprintf("%s?user_id=%s",
		c.endpoint("/api/v1/training-plans/jobs/"+url.PathEscape(handle.JobID)),
		url.QueryEscape(handle.UserID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.remoteError(resp, "could not fetch job status")
	}

	var snap model.JobSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) CancelJob(ctx context.Context, handle *model.JobHandle) error {
	body, _ := json.Marshal(map[string]string{"user_id": handle.UserID})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/api/v1/training-plans/jobs/"+url.PathEscape(handle.JobID)+"/cancel"),
		bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.remoteError(resp, "could not cancel job")
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// remoteError surfaces the server-reported message when present, so the user
// sees "rate limited" rather than a bare status code.
func (c *Client) remoteError(resp *http.Response, fallback string) error {
	var out struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil {
		if out.Error != "" {
			return errors.New(out.Error)
		}
		if out.Message != "" {
			return errors.New(out.Message)
		}
	}
	return fmt.Errorf("%s (HTTP %d)", fallback, resp.StatusCode)
}
