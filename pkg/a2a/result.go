package a2a

import (
	"bytes"
	"encoding/json"
	"fmt"
)

/*
SendMessageResult is the polymorphic result of message/send. Exactly one of
Message or Task is set after decoding. The "kind" member decides, and when a
peer omits it the shape does: a status means Task, a role means Message.
*/
type SendMessageResult struct {
	Message *Message
	Task    *Task
}

func (result *SendMessageResult) UnmarshalJSON(data []byte) error {
	*result = SendMessageResult{}

	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var probe struct {
		Kind   string          `json:"kind"`
		Status json.RawMessage `json:"status"`
		Role   string          `json:"role"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch {
	case probe.Kind == KindTask, probe.Kind == "" && len(probe.Status) > 0:
		result.Task = &Task{}
		return json.Unmarshal(data, result.Task)
	case probe.Kind == KindMessage, probe.Kind == "" && probe.Role != "":
		result.Message = &Message{}
		return json.Unmarshal(data, result.Message)
	}

	return fmt.Errorf("unrecognized result kind %q", probe.Kind)
}

func (result SendMessageResult) MarshalJSON() ([]byte, error) {
	switch {
	case result.Task != nil:
		return json.Marshal(result.Task)
	case result.Message != nil:
		return json.Marshal(result.Message)
	}

	return []byte("null"), nil
}
