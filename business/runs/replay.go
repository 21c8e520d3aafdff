package runs

import (
	"encoding/json"
	"errors"
	"fmt"

	"recosim/business/sim"

	"github.com/pobyzaarif/goshortcute"
)

// replayPayload is the sealed content of a replay token: everything needed
// to reproduce a run bit-for-bit without exposing the seed to the client.
type replayPayload struct {
	Config   sim.Config `json:"config"`
	NumUsers int        `json:"num_users"`
}

func (s *Service) sealReplayToken(payload replayPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	encrypted, err := goshortcute.AESCBCEncrypt(raw, s.replayKey)
	if err != nil {
		return "", err
	}

	return goshortcute.StringtoBase64Encode(encrypted), nil
}

func (s *Service) openReplayToken(token string) (replayPayload, error) {
	if token == "" {
		return replayPayload{}, errors.New("replay token is required")
	}

	decoded := goshortcute.StringtoBase64Decode(token)
	decrypted, err := goshortcute.AESCBCDecrypt([]byte(decoded), s.replayKey)
	if err != nil {
		return replayPayload{}, errors.New("invalid replay token")
	}

	var payload replayPayload
	if err := json.Unmarshal([]byte(decrypted), &payload); err != nil {
		return replayPayload{}, errors.New("invalid replay token")
	}

	if err := payload.Config.Validate(); err != nil {
		return replayPayload{}, fmt.Errorf("replay token config: %w", err)
	}
	if payload.NumUsers <= 0 || payload.NumUsers > maxUsersPerRun {
		return replayPayload{}, errors.New("replay token user count out of range")
	}

	return payload, nil
}
