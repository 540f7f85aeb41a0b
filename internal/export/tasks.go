package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskRegister is the queue type for the monthly export register build.
const TaskRegister = "export:register"

type registerPayload struct {
	Period string `json:"period"`
}

// NewRegisterTask builds a register-build task for the given YYYY-MM period.
func NewRegisterTask(period string) (*asynq.Task, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("export: invalid register period %q", period)
	}
	payload, err := json.Marshal(registerPayload{Period: period})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRegister, payload), nil
}

// HandleRegister is the asynq handler for TaskRegister.
func (s *Service) HandleRegister(ctx context.Context, t *asynq.Task) error {
	var p registerPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("export: decode register payload: %w", err)
	}
	return s.BuildRegister(ctx, p.Period)
}
