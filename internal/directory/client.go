package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/auth-service/internal"
)

// Employee is the subset of the directory payload this service cares
// about: whether the referenced employee exists and is active.
type Employee struct {
	ID     int64 `json:"id"`
	Active bool  `json:"empleadoActivo"`
}

// Client talks to the external employee directory. Lookups are
// fail-closed: a non-2xx status, transport error or malformed body all
// read as "not a valid employee". The timeout bounds the outbound call
// without changing that contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg internal.DirectoryConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) IsActiveEmployee(ctx context.Context, employeeID int64) bool {
	url := fmt.Sprintf("%s/%d", c.baseURL, employeeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("directory: building request failed", "error", err, "employee_id", employeeID)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("directory: lookup failed, treating employee as invalid",
			"error", err,
			"employee_id", employeeID)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("directory: unexpected status, treating employee as invalid",
			"status", resp.StatusCode,
			"employee_id", employeeID)
		return false
	}

	var employee Employee
	if err := json.NewDecoder(resp.Body).Decode(&employee); err != nil {
		c.logger.Warn("directory: malformed response, treating employee as invalid",
			"error", err,
			"employee_id", employeeID)
		return false
	}

	return employee.Active
}
