package services

import (
	"context"

	"github.com/driftline/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// PushMessage is the payload delivered to a user's devices.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// TokenResult is the per-token outcome of a multicast send. Invalid marks
// tokens the provider reported as permanently dead (unregistered or
// malformed), which must be deactivated.
type TokenResult struct {
	Token   string
	OK      bool
	Invalid bool
	Err     error
}

// PushReceipt aggregates one multicast call.
type PushReceipt struct {
	SuccessCount int
	FailureCount int
	Results      []TokenResult
}

// PushSender issues one multicast push call for all tokens. The returned
// error means the call itself failed; per-token failures live in the receipt.
type PushSender interface {
	Send(ctx context.Context, tokens []string, msg PushMessage) (*PushReceipt, error)
}

// PushResult is what the dispatcher reports back to interaction handlers.
// Partial failure is informational, never an error.
type PushResult struct {
	Skipped   bool `json:"skipped"`
	Attempted int  `json:"attempted"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
}

// PushDispatcher sends a message to all of a user's active devices and
// reconciles dead tokens afterwards. Transient failures are not retried; a
// dropped push is simply lost.
type PushDispatcher struct {
	tokens repositories.DeviceTokenRepository
	sender PushSender
	log    zerolog.Logger
}

// NewPushDispatcher creates a new PushDispatcher. A nil sender disables
// delivery: every dispatch reports skipped.
func NewPushDispatcher(tokenRepo repositories.DeviceTokenRepository, sender PushSender, log zerolog.Logger) *PushDispatcher {
	return &PushDispatcher{tokens: tokenRepo, sender: sender, log: log}
}

// SendToUser delivers msg to every active device token of userID. Having no
// tokens is not an error. The returned error covers only total call failure
// (token lookup or the multicast call itself).
func (d *PushDispatcher) SendToUser(ctx context.Context, userID uint, msg PushMessage) (*PushResult, error) {
	if d.sender == nil {
		return &PushResult{Skipped: true}, nil
	}

	deviceTokens, err := d.tokens.GetActiveTokensByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(deviceTokens) == 0 {
		return &PushResult{Skipped: true}, nil
	}

	tokens := make([]string, len(deviceTokens))
	for i, t := range deviceTokens {
		tokens[i] = t.Token
	}

	receipt, err := d.sender.Send(ctx, tokens, msg)
	if err != nil {
		return nil, err
	}

	for _, res := range receipt.Results {
		if res.Invalid {
			if err := d.tokens.DeactivateToken(res.Token); err != nil {
				d.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to deactivate dead device token")
			} else {
				d.log.Info().Uint("user_id", userID).Msg("Deactivated dead device token")
			}
		}
	}

	return &PushResult{
		Attempted: len(tokens),
		Succeeded: receipt.SuccessCount,
		Failed:    receipt.FailureCount,
	}, nil
}
