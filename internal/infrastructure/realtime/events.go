package realtime

import (
	"encoding/json"

	"github.com/taskflow/client/domain"
)

// envelope is the wire format of one push message.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// decodeEvent maps a wire envelope onto a domain event. Deleted events carry
// either a bare id or an {"id": n} object, depending on backend version.
func decodeEvent(payload []byte) (domain.TaskEvent, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return domain.TaskEvent{}, err
	}

	switch domain.EventKind(env.Event) {
	case domain.EventTaskCreated, domain.EventTaskUpdated:
		var task domain.Task
		if err := json.Unmarshal(env.Data, &task); err != nil {
			return domain.TaskEvent{}, err
		}
		return domain.TaskEvent{Kind: domain.EventKind(env.Event), Task: &task}, nil

	case domain.EventTaskDeleted:
		var id int64
		if err := json.Unmarshal(env.Data, &id); err != nil {
			var wrapped struct {
				ID int64 `json:"id"`
			}
			if err := json.Unmarshal(env.Data, &wrapped); err != nil {
				return domain.TaskEvent{}, err
			}
			id = wrapped.ID
		}
		return domain.TaskEvent{Kind: domain.EventTaskDeleted, TaskID: id}, nil

	default:
		return domain.TaskEvent{Kind: domain.EventKind(env.Event)}, nil
	}
}
