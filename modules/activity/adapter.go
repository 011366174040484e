package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort reads the activity summary from another module.
type ActivityPort interface {
	Summary(ctx context.Context, limit int) (Summary, error)
}

// ActivityAdapter implements ActivityPort using the service container.
type ActivityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new ActivityAdapter.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("activity: ServiceContainer is nil")
	}
	return &ActivityAdapter{container: container}
}

// Summary calls the activity-summary service.
func (a *ActivityAdapter) Summary(ctx context.Context, limit int) (Summary, error) {
	req := SummaryRequest{Limit: limit}
	var resp SummaryResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceSummary,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return Summary{}, fmt.Errorf("failed to get activity summary: %w", err)
	}
	return resp.Summary, nil
}
