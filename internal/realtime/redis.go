package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const NotificationChannel = "notifications:studio"

func NewRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Notifier publishes notifications to every API instance through redis and,
// in Run, relays what it receives to the local hub. Without redis it
// broadcasts locally only.
type Notifier struct {
	Hub     *Hub
	Redis   *redis.Client
	Channel string
	Log     zerolog.Logger
}

func NewNotifier(hub *Hub, rdb *redis.Client, log zerolog.Logger) *Notifier {
	return &Notifier{Hub: hub, Redis: rdb, Channel: NotificationChannel, Log: log}
}

func (n *Notifier) Publish(ctx context.Context, kind string, data any) {
	payload, err := json.Marshal(envelope{Type: kind, Data: data})
	if err != nil {
		n.Log.Error().Err(err).Msg("marshal notification")
		return
	}
	if n.Redis != nil {
		err := n.Redis.Publish(ctx, n.Channel, payload).Err()
		if err == nil {
			return
		}
		n.Log.Warn().Err(err).Msg("redis publish gagal, kirim lokal")
	}
	n.Hub.Broadcast(payload)
}

// Run relays channel messages to the hub until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	if n.Redis == nil {
		return
	}
	sub := n.Redis.Subscribe(ctx, n.Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			n.Hub.Broadcast([]byte(msg.Payload))
		}
	}
}
