package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	actionKeyPrefix = "game:actions:"
	leaderboardKey  = "game:wins"

	// Per-room action history is bounded and expires with the room.
	maxActions       = 512
	actionExpiration = 2 * time.Hour

	writeTimeout = 2 * time.Second
)

// ActionRecord is one logged game action, serialized to JSON in a per-room
// redis list (newest first).
type ActionRecord struct {
	Seat   int            `json:"seat"`
	Type   string         `json:"type"`
	Detail map[string]any `json:"detail,omitempty"`
	At     time.Time      `json:"at"`
}

// WinEntry is one row of the win leaderboard.
type WinEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// Recorder logs game actions and wins to redis. Writes are fire-and-forget:
// they run on their own goroutine and failures are logged, never surfaced to
// gameplay. A nil Recorder is valid and does nothing.
type Recorder struct {
	client *redis.Client
	log    *logrus.Entry
}

func NewRecorder(client *redis.Client, log *logrus.Entry) *Recorder {
	return &Recorder{client: client, log: log}
}

// RecordAction appends rec to the room's action history.
func (r *Recorder) RecordAction(roomCode string, rec ActionRecord) {
	if r == nil {
		return
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		data, err := json.Marshal(rec)
		if err != nil {
			r.log.WithError(err).Warn("failed to marshal action record")
			return
		}

		key := actionKeyPrefix + roomCode
		pipe := r.client.Pipeline()
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, maxActions-1)
		pipe.Expire(ctx, key, actionExpiration)
		if _, err := pipe.Exec(ctx); err != nil {
			r.log.WithError(err).WithField("room", roomCode).Warn("failed to record action")
		}
	}()
}

// RecordWin increments name's score on the win leaderboard.
func (r *Recorder) RecordWin(name string) {
	if r == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := r.client.ZIncrBy(ctx, leaderboardKey, 1, name).Err(); err != nil {
			r.log.WithError(err).Warn("failed to record win")
		}
	}()
}

// Actions returns the room's logged actions, newest first.
func (r *Recorder) Actions(ctx context.Context, roomCode string) ([]ActionRecord, error) {
	if r == nil {
		return nil, nil
	}
	raw, err := r.client.LRange(ctx, actionKeyPrefix+roomCode, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]ActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec ActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Leaderboard returns the top n names by win count, best first.
func (r *Recorder) Leaderboard(ctx context.Context, n int) ([]WinEntry, error) {
	if r == nil {
		return nil, nil
	}
	rows, err := r.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]WinEntry, 0, len(rows))
	for _, row := range rows {
		name, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, WinEntry{Name: name, Wins: int(row.Score)})
	}
	return entries, nil
}
