package services

import (
	"context"
	"errors"
	"testing"

	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var errTotalFailure = errors.New("push provider unreachable")

// fakeSender records multicast calls and returns canned receipts.
type fakeSender struct {
	calls   [][]string
	receipt *PushReceipt
	err     error
}

func (f *fakeSender) Send(ctx context.Context, tokens []string, msg PushMessage) (*PushReceipt, error) {
	f.calls = append(f.calls, tokens)
	if f.err != nil {
		return nil, f.err
	}
	if f.receipt != nil {
		return f.receipt, nil
	}
	receipt := &PushReceipt{SuccessCount: len(tokens)}
	for _, token := range tokens {
		receipt.Results = append(receipt.Results, TokenResult{Token: token, OK: true})
	}
	return receipt, nil
}

func TestSendToUserWithNoTokensIsSkipped(t *testing.T) {
	db := newTestDB(t)
	tokens := repositories.NewPostgresDeviceTokenRepository(db)
	sender := &fakeSender{}
	dispatcher := NewPushDispatcher(tokens, sender, zerolog.Nop())

	result, err := dispatcher.SendToUser(context.Background(), 42, PushMessage{Title: "t", Body: "b"})
	require.NoError(t, err)
	require.True(t, result.Skipped)
	require.Empty(t, sender.calls)
}

func TestSendToUserWithNilSenderIsSkipped(t *testing.T) {
	db := newTestDB(t)
	tokens := repositories.NewPostgresDeviceTokenRepository(db)
	dispatcher := NewPushDispatcher(tokens, nil, zerolog.Nop())

	result, err := dispatcher.SendToUser(context.Background(), 42, PushMessage{Title: "t"})
	require.NoError(t, err)
	require.True(t, result.Skipped)
}

func TestSendToUserAggregatesResults(t *testing.T) {
	db := newTestDB(t)
	tokens := repositories.NewPostgresDeviceTokenRepository(db)
	require.NoError(t, tokens.RegisterToken(&models.DeviceToken{UserID: 7, Token: "tok-a", Platform: "ios", IsActive: true}))
	require.NoError(t, tokens.RegisterToken(&models.DeviceToken{UserID: 7, Token: "tok-b", Platform: "android", IsActive: true}))

	sender := &fakeSender{receipt: &PushReceipt{
		SuccessCount: 1,
		FailureCount: 1,
		Results: []TokenResult{
			{Token: "tok-a", OK: true},
			{Token: "tok-b", Err: errors.New("unavailable")}, // transient, not invalid
		},
	}}
	dispatcher := NewPushDispatcher(tokens, sender, zerolog.Nop())

	result, err := dispatcher.SendToUser(context.Background(), 7, PushMessage{Title: "t"})
	require.NoError(t, err)
	require.False(t, result.Skipped)
	require.Equal(t, 2, result.Attempted)
	require.Equal(t, 1, result.Succeeded)
	require.Equal(t, 1, result.Failed)

	// Transient failures leave the token active.
	active, err := tokens.GetActiveTokensByUserID(7)
	require.NoError(t, err)
	require.Len(t, active, 2)
}

func TestSendToUserDeactivatesDeadTokens(t *testing.T) {
	db := newTestDB(t)
	tokens := repositories.NewPostgresDeviceTokenRepository(db)
	require.NoError(t, tokens.RegisterToken(&models.DeviceToken{UserID: 7, Token: "tok-live", Platform: "ios", IsActive: true}))
	require.NoError(t, tokens.RegisterToken(&models.DeviceToken{UserID: 7, Token: "tok-dead", Platform: "ios", IsActive: true}))

	sender := &fakeSender{receipt: &PushReceipt{
		SuccessCount: 1,
		FailureCount: 1,
		Results: []TokenResult{
			{Token: "tok-live", OK: true},
			{Token: "tok-dead", Invalid: true, Err: errors.New("registration-token-not-registered")},
		},
	}}
	dispatcher := NewPushDispatcher(tokens, sender, zerolog.Nop())

	_, err := dispatcher.SendToUser(context.Background(), 7, PushMessage{Title: "t"})
	require.NoError(t, err)

	active, err := tokens.GetActiveTokensByUserID(7)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "tok-live", active[0].Token)

	// The dead token row is deactivated, not deleted.
	var dead models.DeviceToken
	require.NoError(t, db.Where("token = ?", "tok-dead").First(&dead).Error)
	require.False(t, dead.IsActive)
}

func TestSendToUserPropagatesTotalCallFailure(t *testing.T) {
	db := newTestDB(t)
	tokens := repositories.NewPostgresDeviceTokenRepository(db)
	require.NoError(t, tokens.RegisterToken(&models.DeviceToken{UserID: 7, Token: "tok-a", Platform: "web", IsActive: true}))

	sender := &fakeSender{err: errTotalFailure}
	dispatcher := NewPushDispatcher(tokens, sender, zerolog.Nop())

	_, err := dispatcher.SendToUser(context.Background(), 7, PushMessage{Title: "t"})
	require.ErrorIs(t, err, errTotalFailure)
}

func TestReRegisteringTokenReactivatesIt(t *testing.T) {
	db := newTestDB(t)
	tokens := repositories.NewPostgresDeviceTokenRepository(db)
	require.NoError(t, tokens.RegisterToken(&models.DeviceToken{UserID: 7, Token: "tok-a", Platform: "ios", IsActive: true}))
	require.NoError(t, tokens.DeactivateToken("tok-a"))

	active, err := tokens.GetActiveTokensByUserID(7)
	require.NoError(t, err)
	require.Empty(t, active)

	require.NoError(t, tokens.RegisterToken(&models.DeviceToken{UserID: 7, Token: "tok-a", Platform: "ios", IsActive: true}))
	active, err = tokens.GetActiveTokensByUserID(7)
	require.NoError(t, err)
	require.Len(t, active, 1)
}
