package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FilterKind tells ContentRepo how to parse a query-string filter value.
type FilterKind int

const (
	FilterString FilterKind = iota
	FilterBool
	FilterUint
)

// ContentFilter maps a query parameter onto a column.
type ContentFilter struct {
	Column string
	Kind   FilterKind
}

// ContentTable describes how a flat content type maps onto its table. The
// table is always aliased "c" in Select, From and filter columns.
type ContentTable[T any] struct {
	Name    string                   // bare table name for writes
	Select  string                   // select list matching Scan
	From    string                   // FROM clause with joins
	Columns []string                 // writable columns, in the order Args returns them
	Args    func(item *T) []any      // values for Columns
	Scan    func(s scanner) (*T, error)
	Search  []string                 // columns matched by ?search=
	Filters map[string]ContentFilter // query parameter name -> column
	OrderBy string
}

// ContentQuery holds raw list parameters.
type ContentQuery struct {
	Search  string
	Filters map[string]string
}

// ErrInvalidFilter wraps a filter value that does not parse.
var ErrInvalidFilter = errors.New("invalid filter")

// ContentRepo is a CRUD repository for one flat content table.
type ContentRepo[T any] struct {
	db *sql.DB
	t  ContentTable[T]
}

func NewContentRepo[T any](db *sql.DB, t ContentTable[T]) *ContentRepo[T] {
	return &ContentRepo[T]{db: db, t: t}
}

func (r *ContentRepo[T]) List(ctx context.Context, q ContentQuery) ([]*T, error) {
	var (
		where []string
		args  []any
	)
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		raw := q.Filters[key]
		f, ok := r.t.Filters[key]
		if !ok || raw == "" {
			continue
		}
		v, err := parseFilter(f.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidFilter, key, raw)
		}
		where = append(where, f.Column+" = ?")
		args = append(args, v)
	}
	if s := strings.TrimSpace(q.Search); s != "" && len(r.t.Search) > 0 {
		clause, a := searchClause(s, r.t.Search...)
		where = append(where, clause)
		args = append(args, a...)
	}
	query := "SELECT " + r.t.Select + " " + r.t.From
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if r.t.OrderBy != "" {
		query += " ORDER BY " + r.t.OrderBy
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*T{}
	for rows.Next() {
		item, err := r.t.Scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *ContentRepo[T]) GetByID(ctx context.Context, id uint64) (*T, error) {
	item, err := r.t.Scan(r.db.QueryRowContext(ctx,
		"SELECT "+r.t.Select+" "+r.t.From+" WHERE c.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	return item, err
}

// Create inserts item and returns the stored row.
func (r *ContentRepo[T]) Create(ctx context.Context, item *T) (*T, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO "+r.t.Name+" ("+strings.Join(r.t.Columns, ", ")+") VALUES ("+placeholders(len(r.t.Columns))+")",
		r.t.Args(item)...)
	if err != nil {
		return nil, mapWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update writes every column of item to row id and returns the stored row.
func (r *ContentRepo[T]) Update(ctx context.Context, id uint64, item *T) (*T, error) {
	sets := make([]string, len(r.t.Columns))
	for i, c := range r.t.Columns {
		sets[i] = c + "=?"
	}
	args := append(r.t.Args(item), id)
	res, err := r.db.ExecContext(ctx,
		"UPDATE "+r.t.Name+" SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return nil, mapWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows for a no-op update too
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *ContentRepo[T]) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+r.t.Name+" WHERE id=?", id)
	if err != nil {
		return mapWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContentNotFound
	}
	return nil
}

func parseFilter(kind FilterKind, raw string) (any, error) {
	switch kind {
	case FilterBool:
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return nil, ErrInvalidFilter
	case FilterUint:
		return strconv.ParseUint(raw, 10, 64)
	}
	return raw, nil
}
