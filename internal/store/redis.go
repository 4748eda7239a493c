package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/padsync/backend/internal/room"
)

const roomKeyPrefix = "room:"

// Redis implements Store on a shared redis instance, letting several server
// processes coordinate the same set of rooms without changing the
// coordinator's contract.
type Redis struct {
	rdb *redis.Client
}

var _ Store = (*Redis)(nil)

// NewRedis connects and verifies connectivity before returning.
func NewRedis(ctx context.Context, addr string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb}, nil
}

type redisRoom struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	CreatorID string    `json:"creatorId"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func encodeRoom(r *room.Room) ([]byte, error) {
	return json.Marshal(redisRoom{
		ID:        r.ID,
		Document:  r.Document,
		CreatorID: r.CreatorID,
		Mode:      string(r.Mode),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	})
}

func decodeRoom(raw []byte) (*room.Room, error) {
	var rr redisRoom
	if err := json.Unmarshal(raw, &rr); err != nil {
		return nil, err
	}
	return &room.Room{
		ID:        rr.ID,
		Document:  rr.Document,
		CreatorID: rr.CreatorID,
		Mode:      room.Mode(rr.Mode),
		CreatedAt: rr.CreatedAt,
		UpdatedAt: rr.UpdatedAt,
	}, nil
}

func (s *Redis) Create(ctx context.Context, r *room.Room) error {
	raw, err := encodeRoom(r)
	if err != nil {
		return err
	}
	// SetNX makes create-if-absent atomic across processes.
	ok, err := s.rdb.SetNX(ctx, roomKeyPrefix+r.ID, raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoomExists
	}
	return nil
}

func (s *Redis) Get(ctx context.Context, id string) (*room.Room, error) {
	raw, err := s.rdb.Get(ctx, roomKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRoom(raw)
}

func (s *Redis) SetDocument(ctx context.Context, id, document string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	r.Document = document
	r.UpdatedAt = time.Now().UTC()

	raw, err := encodeRoom(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, roomKeyPrefix+id, raw, 0).Err()
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, roomKeyPrefix+id).Err()
}

func (s *Redis) List(ctx context.Context) ([]*room.Room, error) {
	var rooms []*room.Room
	iter := s.rdb.Scan(ctx, 0, roomKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue // deleted between scan and get
		}
		if err != nil {
			return nil, err
		}
		r, err := decodeRoom(raw)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *Redis) Count(ctx context.Context) (int, error) {
	rooms, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(rooms), nil
}

func (s *Redis) Close() error {
	return s.rdb.Close()
}
