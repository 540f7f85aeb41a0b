package rates

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskRefresh is the queue type for the periodic exchange rate refresh.
const TaskRefresh = "rates:refresh"

// NewRefreshTask builds the refresh task; the payload is empty, the schedule
// carries all the information.
func NewRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskRefresh, nil)
}

// HandleRefresh is the asynq handler for TaskRefresh.
func (s *Service) HandleRefresh(ctx context.Context, _ *asynq.Task) error {
	return s.Refresh(ctx)
}
