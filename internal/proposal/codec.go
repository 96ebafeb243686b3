package proposal

import (
	"encoding/json"
	"fmt"
)

type envelope struct {
	Action Action          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Encode serializes a proposal for out-of-process storage (the pending
// proposal lives in Redis between extraction and confirmation).
func Encode(p Proposal) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal proposal failed: %w", err)
	}
	raw, err := json.Marshal(envelope{Action: p.Action(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal proposal envelope failed: %w", err)
	}
	return raw, nil
}

func Decode(raw []byte) (Proposal, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal proposal envelope failed: %w", err)
	}

	var (
		p   Proposal
		err error
	)
	switch env.Action {
	case ActionAdd:
		var v Add
		err = json.Unmarshal(env.Data, &v)
		p = v
	case ActionUpdate:
		var v Update
		err = json.Unmarshal(env.Data, &v)
		p = v
	case ActionDelete:
		var v Delete
		err = json.Unmarshal(env.Data, &v)
		p = v
	case ActionDeleteCategory:
		var v DeleteCategory
		err = json.Unmarshal(env.Data, &v)
		p = v
	case ActionRenameCategory:
		var v RenameCategory
		err = json.Unmarshal(env.Data, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown proposal action %q", env.Action)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s proposal failed: %w", env.Action, err)
	}
	return p, nil
}
