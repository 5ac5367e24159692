package employee

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const SummaryKeyPrefix = "employees:summary:"

func GetSummaryKey(employeeID string) string {
	return SummaryKeyPrefix + employeeID
}

// Directory resolves employee ids into display summaries. Ids that cannot be
// resolved are absent from the returned map.
type Directory interface {
	Resolve(ctx context.Context, ids []string) (map[string]Summary, error)
}

type directory struct {
	repo   Repository
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewDirectory(repo Repository, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Directory {
	l := zap.L().Named("employee.directory")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.directory")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &directory{
		repo:   repo,
		rdb:    rdb,
		ttl:    ttl,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (d *directory) Resolve(ctx context.Context, ids []string) (map[string]Summary, error) {
	ids = uniqueValidIDs(ids)
	out := make(map[string]Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := d.readCache(ctx, ids, out)
	if len(missing) == 0 {
		return out, nil
	}

	// Concurrent list requests for the same page share one directory query.
	v, err, _ := d.sf.Do(strings.Join(missing, ","), func() (interface{}, error) {
		return d.repo.FindSummariesByIDs(ctx, missing)
	})
	if err != nil {
		d.logger.Warn("resolve employees failed",
			zap.Int("requested", len(missing)),
			zap.Error(err),
		)
		return out, err
	}

	// Postgres prints uuids in lowercase; answer under the ids callers asked for.
	byCanonical := make(map[string][]string, len(missing))
	for _, id := range missing {
		key := canonicalID(id)
		byCanonical[key] = append(byCanonical[key], id)
	}

	rows := v.([]SummaryRow)
	loaded := make([]Summary, 0, len(rows))
	for _, row := range rows {
		for _, id := range byCanonical[canonicalID(row.ID)] {
			s := summaryFromRow(row)
			s.ID = id
			out[id] = s
			loaded = append(loaded, s)
		}
	}
	d.writeCache(ctx, loaded)

	return out, nil
}

func (d *directory) readCache(ctx context.Context, ids []string, out map[string]Summary) []string {
	if d.rdb == nil {
		return ids
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = GetSummaryKey(id)
	}

	vals, err := d.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		d.logger.Debug("employee summary cache read failed", zap.Error(err))
		return ids
	}

	missing := make([]string, 0, len(ids))
	for i, raw := range vals {
		str, ok := raw.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var s Summary
		if err := json.Unmarshal([]byte(str), &s); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		out[ids[i]] = s
	}
	return missing
}

func (d *directory) writeCache(ctx context.Context, summaries []Summary) {
	if d.rdb == nil || len(summaries) == 0 {
		return
	}

	_, err := d.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range summaries {
			payload, err := json.Marshal(s)
			if err != nil {
				continue
			}
			pipe.Set(ctx, GetSummaryKey(s.ID), payload, d.ttl)
		}
		return nil
	})
	if err != nil {
		d.logger.Debug("employee summary cache write failed", zap.Error(err))
	}
}

// uniqueValidIDs drops duplicates and ids that are not UUIDs; those can never
// match a directory row.
func uniqueValidIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func canonicalID(id string) string {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return parsed.String()
}
