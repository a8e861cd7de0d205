package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/buscadoc/internal/db"
)

// RPushCapped appends values and trims the list in one round-trip.
func (s *Store) RPushCapped(ctx context.Context, key string, maxLen int, values ...[]byte) error {
	if len(values) == 0 {
		return nil
	}
	elems := make([]string, len(values))
	for i, v := range values {
		elems[i] = rueidis.BinaryString(v)
	}

	cmds := rueidis.Commands{s.b().Rpush().Key(key).Element(elems...).Build()}
	ops := []string{db.OpRPush}
	if maxLen > 0 {
		cmds = append(cmds, s.b().Ltrim().Key(key).Start(int64(-maxLen)).Stop(-1).Build())
		ops = append(ops, db.OpLTrim)
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: ops[i], Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}
	return nil
}

// LRange returns list entries between start and stop inclusive.
// A missing key yields an empty result.
func (s *Store) LRange(ctx context.Context, key string, start, stop int) ([][]byte, error) {
	cmd := s.b().Lrange().Key(key).Start(int64(start)).Stop(int64(stop)).Build()
	items, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	out := make([][]byte, len(items))
	for i, item := range items {
		out[i] = []byte(item)
	}
	return out, nil
}
