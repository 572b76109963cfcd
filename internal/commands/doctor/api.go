package doctor

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hay-kot/storefront/internal/api"
)

// APICheck verifies that the backend answers HTTP requests.
type APICheck struct {
	client *api.Client
}

// NewAPICheck creates a new backend reachability check.
func NewAPICheck(client *api.Client) *APICheck {
	return &APICheck{client: client}
}

func (c *APICheck) Name() string {
	return "Backend"
}

func (c *APICheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	err := c.client.Do(ctx, http.MethodGet, "/", nil, nil)

	var apiErr *api.APIError
	switch {
	case err == nil:
		result.Items = append(result.Items, Item{
			Label:  "Reachable",
			Status: StatusPass,
			Detail: c.client.BaseURL(),
		})
	case errors.As(err, &apiErr):
		// any HTTP answer means the server is up
		result.Items = append(result.Items, Item{
			Label:  "Reachable",
			Status: StatusPass,
			Detail: fmt.Sprintf("%s (status %d)", c.client.BaseURL(), apiErr.Status),
		})
	default:
		result.Items = append(result.Items, Item{
			Label:  "Reachable",
			Status: StatusFail,
			Detail: err.Error(),
		})
	}

	return result
}
