package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQueueDrain = "intake.queue.drain"

// QueueDrainPayload records what triggered the drain so the worker can log it.
type QueueDrainPayload struct {
	Reason string `json:"reason"`
}

func NewQueueDrainTask(payload QueueDrainPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQueueDrain, data), nil
}

func ParseQueueDrainPayload(task *asynq.Task) (QueueDrainPayload, error) {
	var payload QueueDrainPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QueueDrainPayload{}, err
	}
	return payload, nil
}
