package services

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// fcmSender adapts the Firebase Cloud Messaging client to PushSender.
type fcmSender struct {
	client *messaging.Client
}

// NewFCMSender wraps a Firebase messaging client as a PushSender
func NewFCMSender(client *messaging.Client) PushSender {
	return &fcmSender{client: client}
}

// Send issues a single multicast call for all tokens and maps each response
// back to a TokenResult.
func (s *fcmSender) Send(ctx context.Context, tokens []string, msg PushMessage) (*PushReceipt, error) {
	multicast := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}

	batch, err := s.client.SendEachForMulticast(ctx, multicast)
	if err != nil {
		return nil, err
	}

	receipt := &PushReceipt{
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
		Results:      make([]TokenResult, len(batch.Responses)),
	}
	for i, resp := range batch.Responses {
		result := TokenResult{Token: tokens[i], OK: resp.Success, Err: resp.Error}
		if resp.Error != nil {
			// Unregistered and invalid-argument are permanent; everything
			// else is treated as transient and left alone.
			result.Invalid = messaging.IsUnregistered(resp.Error) || messaging.IsInvalidArgument(resp.Error)
		}
		receipt.Results[i] = result
	}
	return receipt, nil
}
