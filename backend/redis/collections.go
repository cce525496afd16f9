package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/cachex/backend"
)

// Hashes

func (r *Redis) HSet(ctx context.Context, key, field, value string) (bool, error) {
	n, err := r.rdb.HSet(ctx, key, field, value).Result()
	return n == 1, mapErr(err)
}

func (r *Redis) HSetMap(ctx context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]any, 0, 2*len(values))
	for f, v := range values {
		pairs = append(pairs, f, v)
	}
	return mapErr(r.rdb.HSet(ctx, key, pairs...).Err())
}

func (r *Redis) HGet(ctx context.Context, key, field string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, key, field).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapErr(err)
	}
	return v, true, nil
}

func (r *Redis) HGetFields(ctx context.Context, key string, fields []string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	if len(fields) == 0 {
		return out, nil
	}
	vals, err := r.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, mapErr(err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[fields[i]] = s
		}
	}
	return out, nil
}

func (r *Redis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := r.rdb.HGetAll(ctx, key).Result()
	return m, mapErr(err)
}

func (r *Redis) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	n, err := r.rdb.HDel(ctx, key, fields...).Result()
	return n, mapErr(err)
}

func (r *Redis) HIncrBy(ctx context.Context, key, field string, delta float64) (float64, error) {
	f, err := r.rdb.HIncrByFloat(ctx, key, field, delta).Result()
	return f, mapErr(err)
}

func (r *Redis) HKeys(ctx context.Context, key string) ([]string, error) {
	ks, err := r.rdb.HKeys(ctx, key).Result()
	if err != nil {
		return nil, mapErr(err)
	}
	sort.Strings(ks)
	return ks, nil
}

// Lists

func (r *Redis) Push(ctx context.Context, key string, left bool, values ...string) (int64, error) {
	var (
		n   int64
		err error
	)
	switch {
	case len(values) == 0:
		n, err = r.rdb.LLen(ctx, key).Result()
	case left:
		n, err = r.rdb.LPush(ctx, key, args(values)...).Result()
	default:
		n, err = r.rdb.RPush(ctx, key, args(values)...).Result()
	}
	return n, mapErr(err)
}

func (r *Redis) Pop(ctx context.Context, key string, left bool) (string, bool, error) {
	var cmd *goredis.StringCmd
	if left {
		cmd = r.rdb.LPop(ctx, key)
	} else {
		cmd = r.rdb.RPop(ctx, key)
	}
	v, err := cmd.Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapErr(err)
	}
	return v, true, nil
}

func (r *Redis) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vs, err := r.rdb.LRange(ctx, key, start, stop).Result()
	return vs, mapErr(err)
}

func (r *Redis) Trim(ctx context.Context, key string, start, stop int64) error {
	return mapErr(r.rdb.LTrim(ctx, key, start, stop).Err())
}

// Sorted sets

func members(zs []goredis.Z) []backend.Member {
	out := make([]backend.Member, len(zs))
	for i, z := range zs {
		name, ok := z.Member.(string)
		if !ok {
			name = fmt.Sprint(z.Member)
		}
		out[i] = backend.Member{Name: name, Score: z.Score}
	}
	return out
}

func (r *Redis) ZAdd(ctx context.Context, key, member string, score float64) (bool, error) {
	n, err := r.rdb.ZAdd(ctx, key, goredis.Z{Score: score, Member: member}).Result()
	return n == 1, mapErr(err)
}

func (r *Redis) ZAddMany(ctx context.Context, key string, ms map[string]float64) (int64, error) {
	if len(ms) == 0 {
		return 0, nil
	}
	zs := make([]goredis.Z, 0, len(ms))
	for name, score := range ms {
		zs = append(zs, goredis.Z{Score: score, Member: name})
	}
	n, err := r.rdb.ZAdd(ctx, key, zs...).Result()
	return n, mapErr(err)
}

func (r *Redis) ZScore(ctx context.Context, key, member string) (float64, bool, error) {
	s, err := r.rdb.ZScore(ctx, key, member).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, mapErr(err)
	}
	return s, true, nil
}

func (r *Redis) ZIncrBy(ctx context.Context, key, member string, delta float64) (float64, error) {
	s, err := r.rdb.ZIncrBy(ctx, key, delta, member).Result()
	return s, mapErr(err)
}

func (r *Redis) ZRange(ctx context.Context, key string, start, stop int64) ([]backend.Member, error) {
	zs, err := r.rdb.ZRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, mapErr(err)
	}
	return members(zs), nil
}

func (r *Redis) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]backend.Member, error) {
	zs, err := r.rdb.ZRangeByScoreWithScores(ctx, key, &goredis.ZRangeBy{
		Min: formatFloat(min),
		Max: formatFloat(max),
	}).Result()
	if err != nil {
		return nil, mapErr(err)
	}
	return members(zs), nil
}

func (r *Redis) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error) {
	n, err := r.rdb.ZRemRangeByRank(ctx, key, start, stop).Result()
	return n, mapErr(err)
}

func (r *Redis) ZRemRangeByScore(ctx context.Context, key string, min, max float64) (int64, error) {
	n, err := r.rdb.ZRemRangeByScore(ctx, key, formatFloat(min), formatFloat(max)).Result()
	return n, mapErr(err)
}

// Sets

func (r *Redis) SAdd(ctx context.Context, key string, ms ...string) (int64, error) {
	if len(ms) == 0 {
		return 0, nil
	}
	n, err := r.rdb.SAdd(ctx, key, args(ms)...).Result()
	return n, mapErr(err)
}

func (r *Redis) SRem(ctx context.Context, key string, ms ...string) (int64, error) {
	if len(ms) == 0 {
		return 0, nil
	}
	n, err := r.rdb.SRem(ctx, key, args(ms)...).Result()
	return n, mapErr(err)
}

func (r *Redis) SMembers(ctx context.Context, key string) ([]string, error) {
	vs, err := r.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, mapErr(err)
	}
	sort.Strings(vs)
	return vs, nil
}

func (r *Redis) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, key, member).Result()
	return ok, mapErr(err)
}

func (r *Redis) SMove(ctx context.Context, src, dst, member string) (bool, error) {
	ok, err := r.rdb.SMove(ctx, src, dst, member).Result()
	return ok, mapErr(err)
}

func (r *Redis) SRandMember(ctx context.Context, key string, count int) ([]string, error) {
	if count == 0 {
		return []string{}, nil
	}
	vs, err := r.rdb.SRandMemberN(ctx, key, int64(count)).Result()
	return vs, mapErr(err)
}
