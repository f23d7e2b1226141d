package util

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dentalworks/labtrack/config"
)

// ChangeEvent is published after a successful mutation so other open views
// can refresh the affected table. Delivery is best-effort over Redis pub/sub;
// consumers that miss an event simply refetch on their next load.
type ChangeEvent struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     uint   `json:"id"`
}

// Change actions.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

const changeChannelPrefix = "labtrack:changes:"

// PublishChange announces a row mutation on the table's change channel.
// A nil Redis client (test env, Redis down) is not an error; mutations must
// never fail because notification delivery is unavailable.
func PublishChange(table, action string, id uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ChangeEvent{Table: table, Action: action, ID: id})
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}
	if err := rdb.Publish(context.Background(), changeChannelPrefix+table, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// SubscribeChanges returns a channel of decoded change events for a table.
// The returned cancel function closes the underlying subscription.
func SubscribeChanges(ctx context.Context, table string) (<-chan ChangeEvent, func(), error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil, nil, fmt.Errorf("redis not available")
	}

	sub := rdb.Subscribe(ctx, changeChannelPrefix+table)
	out := make(chan ChangeEvent)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}
