package services

import (
	"context"
	"fmt"

	"paletteapi/models"
	"paletteapi/repository"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
)

type Notifier interface {
	Notify(ctx context.Context, userID uint, title, body string, data map[string]string) error
}

// FirebaseNotifier pushes to every active device token of a user.
type FirebaseNotifier struct {
	App  *firebase.App
	Repo repository.Repository
}

func (n *FirebaseNotifier) Notify(ctx context.Context, userID uint, title, body string, data map[string]string) error {
	user, err := n.Repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.ReceiveNotifications {
		return nil
	}
	tokens, err := n.Repo.ActivePushTokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("load push tokens: %w", err)
	}
	messages := buildMessages(tokens, title, body, data)
	if len(messages) == 0 {
		return nil
	}
	client, err := n.App.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("init messaging client: %w", err)
	}
	br, err := client.SendEach(ctx, messages)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	for i, resp := range br.Responses {
		if resp != nil && !resp.Success {
			log.Warn().Uint("user_id", userID).Str("token", messages[i].Token).Err(resp.Error).Msg("push failed")
		}
	}
	log.Info().Uint("user_id", userID).Int("sent", br.SuccessCount).Int("failed", br.FailureCount).Msg("push sent")
	return nil
}

func buildMessages(tokens []models.UserPushToken, title, body string, data map[string]string) []*messaging.Message {
	var apnsData map[string]interface{}
	if data != nil {
		apnsData = make(map[string]interface{}, len(data))
		for k, v := range data {
			apnsData[k] = v
		}
	}
	messages := make([]*messaging.Message, 0, len(tokens))
	for _, token := range tokens {
		if !token.Active || token.Token == "" {
			continue
		}
		msg := &messaging.Message{
			Token: token.Token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}
		switch token.Platform {
		case models.PlatformIOS:
			msg.APNS = &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Alert: &messaging.ApsAlert{Title: title, Body: body},
						Sound: "default",
					},
					CustomData: apnsData,
				},
			}
		case models.PlatformAndroid:
			msg.Android = &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Priority:  messaging.PriorityHigh,
					ChannelID: "wardrobe-updates",
				},
				Data: data,
			}
		}
		messages = append(messages, msg)
	}
	return messages
}
