// Package orm is a small chainable wrapper over *gorm.DB whose terminal
// Cache call reads through pkg/cache.
//
//	var items []MenuRow
//	err := orm.Use(db).WithContext(ctx).
//	    Where("is_available = ?", true).
//	    Order("name ASC").
//	    Cache("menu:all", time.Minute, &items)
package orm

import (
	"context"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/cache"
	"github.com/shashiranjanraj/tiffin/pkg/database"
	"gorm.io/gorm"
)

type Query struct {
	db  *gorm.DB
	ctx context.Context
}

// DB starts a query on the process-wide connection.
func DB() *Query { return Use(database.DB) }

func Use(db *gorm.DB) *Query {
	return &Query{db: db, ctx: context.Background()}
}

func (q *Query) with(db *gorm.DB) *Query { return &Query{db: db, ctx: q.ctx} }

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx), ctx: ctx}
}

func (q *Query) Model(v any) *Query                    { return q.with(q.db.Model(v)) }
func (q *Query) Table(name string, args ...any) *Query { return q.with(q.db.Table(name, args...)) }
func (q *Query) Select(query any, args ...any) *Query  { return q.with(q.db.Select(query, args...)) }
func (q *Query) Joins(query string, args ...any) *Query {
	return q.with(q.db.Joins(query, args...))
}
func (q *Query) Where(query any, args ...any) *Query { return q.with(q.db.Where(query, args...)) }
func (q *Query) Order(value any) *Query              { return q.with(q.db.Order(value)) }
func (q *Query) Limit(n int) *Query                  { return q.with(q.db.Limit(n)) }

// When applies fn only if cond holds; used for optional filters.
func (q *Query) When(cond bool, fn func(*Query) *Query) *Query {
	if !cond {
		return q
	}
	return fn(q)
}

func (q *Query) Get(dest any) error   { return q.db.Find(dest).Error }
func (q *Query) First(dest any) error { return q.db.First(dest).Error }

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

// Cache serves dest from the cache under key, running the query on a miss.
// A zero ttl bypasses the cache.
func (q *Query) Cache(key string, ttl time.Duration, dest any) error {
	if ttl <= 0 {
		return q.Get(dest)
	}
	return cache.Remember(q.ctx, key, ttl, dest, func() error { return q.Get(dest) })
}
