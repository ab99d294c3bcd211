package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/conv"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS product (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	category          TEXT NOT NULL DEFAULT '',
	subcategory       TEXT NOT NULL DEFAULT '',
	rating            REAL NOT NULL DEFAULT 0,
	is_featured       INTEGER NOT NULL DEFAULT 0,
	is_on_sale        INTEGER NOT NULL DEFAULT 0,
	similarity_vector TEXT NOT NULL DEFAULT '[]',
	created_ts        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS interaction (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	product_id TEXT NOT NULL,
	type       TEXT NOT NULL,
	created_ts INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interaction_user ON interaction (user_id, created_ts);
CREATE INDEX IF NOT EXISTS idx_interaction_created ON interaction (created_ts);
`

// SQLCatalog 是基于 SQLite 的 ProductStore + InteractionStore 适配器。
//
// 特征向量在库里以 JSON 文本存储（similarity_vector 列），只在这里解析成 []float64，
// 上层打分代码不接触字符串编码。
type SQLCatalog struct {
	db *sql.DB
}

// OpenSQLCatalog 打开 SQLite 数据库并确保表结构存在。
// dsn 示例："file:shop.db"、"file::memory:"。
func OpenSQLCatalog(ctx context.Context, dsn string) (*SQLCatalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, core.Unavailable(core.ModuleStore, err)
	}
	// SQLite 写入串行；单连接也保证 :memory: 库在连接间共享
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, core.Unavailable(core.ModuleStore, fmt.Errorf("apply schema: %w", err))
	}
	return &SQLCatalog{db: db}, nil
}

func (c *SQLCatalog) Close() error {
	return c.db.Close()
}

// SaveProduct 写入或更新商品（按 id upsert，更新时保留原写入顺序）。
// rating 越界、向量含 NaN/Inf 或长度与库中其他向量不一致时返回 InvalidInput。
func (c *SQLCatalog) SaveProduct(ctx context.Context, p core.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	vector, err := conv.FormatVector(p.FeatureVector)
	if err != nil {
		return core.InvalidInputf(core.ModuleStore, "product %q: %v", p.ID, err)
	}
	if err := c.checkDim(ctx, p); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	stmt := `
		INSERT INTO product (id, name, category, subcategory, rating, is_featured, is_on_sale, similarity_vector, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			subcategory = excluded.subcategory,
			rating = excluded.rating,
			is_featured = excluded.is_featured,
			is_on_sale = excluded.is_on_sale,
			similarity_vector = excluded.similarity_vector
	`
	_, err = c.db.ExecContext(ctx, stmt,
		p.ID, p.Name, p.Category, p.Subcategory, p.Rating,
		p.IsFeatured, p.IsOnSale, vector, p.CreatedAt.UnixNano(),
	)
	if err != nil {
		return core.Unavailable(core.ModuleStore, err)
	}
	return nil
}

// checkDim 与库中任意一个其他商品的非空向量比较长度。
func (c *SQLCatalog) checkDim(ctx context.Context, p core.Product) error {
	if len(p.FeatureVector) == 0 {
		return nil
	}
	var stored string
	err := c.db.QueryRowContext(ctx,
		`SELECT similarity_vector FROM product WHERE id != ? AND similarity_vector NOT IN ('', '[]') LIMIT 1`,
		p.ID).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return core.Unavailable(core.ModuleStore, err)
	}
	vec, err := conv.ParseVector(stored)
	if err != nil {
		return corrupt("", "malformed similarity vector", err)
	}
	if len(vec) > 0 && len(vec) != len(p.FeatureVector) {
		return core.InvalidInputf(core.ModuleStore, "product %q has a %d-dim vector, want %d",
			p.ID, len(p.FeatureVector), len(vec))
	}
	return nil
}

func (c *SQLCatalog) FindMany(ctx context.Context, filter core.ProductFilter) ([]core.Product, error) {
	where, args := []string{}, []any{}
	if len(filter.IDs) > 0 {
		where = append(where, "id IN ("+placeholders(len(filter.IDs))+")")
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}
	if len(filter.ExcludeIDs) > 0 {
		where = append(where, "id NOT IN ("+placeholders(len(filter.ExcludeIDs))+")")
		for _, id := range filter.ExcludeIDs {
			args = append(args, id)
		}
	}
	if filter.Category != "" {
		where, args = append(where, "category = ?"), append(args, filter.Category)
	}
	if filter.MinRating > 0 {
		where, args = append(where, "rating >= ?"), append(args, filter.MinRating)
	}
	if filter.FeaturedOnly {
		where = append(where, "is_featured = 1")
	}

	query := `SELECT id, name, category, subcategory, rating, is_featured, is_on_sale, similarity_vector, created_ts FROM product`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid ASC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.Unavailable(core.ModuleStore, err)
	}
	defer rows.Close()

	out := make([]core.Product, 0)
	dim := 0
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		if n := len(p.FeatureVector); n > 0 {
			if dim == 0 {
				dim = n
			} else if n != dim {
				return nil, corrupt(p.ID, fmt.Sprintf("%d-dim similarity vector, want %d", n, dim), nil)
			}
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Unavailable(core.ModuleStore, err)
	}
	return out, nil
}

func (c *SQLCatalog) FindByID(ctx context.Context, id string) (*core.Product, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, name, category, subcategory, rating, is_featured, is_on_sale, similarity_vector, created_ts FROM product WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*core.Product, error) {
	var (
		p         core.Product
		vector    string
		createdTs int64
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Category, &p.Subcategory, &p.Rating,
		&p.IsFeatured, &p.IsOnSale, &vector, &createdTs); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, core.Unavailable(core.ModuleStore, err)
	}
	vec, err := conv.ParseVector(vector)
	if err != nil {
		return nil, corrupt(p.ID, "malformed similarity vector", err)
	}
	p.FeatureVector = vec
	// 库里的数据可能绕过 SaveProduct 写入
	if err := p.Validate(); err != nil {
		return nil, corrupt(p.ID, "invalid row", err)
	}
	p.CreatedAt = time.Unix(0, createdTs)
	return &p, nil
}

// corrupt 表示库中数据本身有问题（不是调用方输入错误）。
func corrupt(id, what string, err error) error {
	msg := "store: " + what
	if id != "" {
		msg = fmt.Sprintf("store: product %s: %s", id, what)
	}
	return &core.DomainError{
		Module:  core.ModuleStore,
		Code:    core.ErrorCodeInternalError,
		Message: msg,
		Err:     err,
	}
}

// Interactions 返回 InteractionStore 视图。
func (c *SQLCatalog) Interactions() *SQLInteractions {
	return &SQLInteractions{db: c.db}
}

// SQLInteractions 是 SQLCatalog 的行为日志视图。
type SQLInteractions struct {
	db *sql.DB
}

func (s *SQLInteractions) FindMany(ctx context.Context, filter core.InteractionFilter) ([]core.Interaction, error) {
	where, args := []string{}, []any{}
	if filter.UserID != "" {
		where, args = append(where, "user_id = ?"), append(args, filter.UserID)
	}
	if len(filter.ProductIDs) > 0 {
		where = append(where, "product_id IN ("+placeholders(len(filter.ProductIDs))+")")
		for _, id := range filter.ProductIDs {
			args = append(args, id)
		}
	}
	if len(filter.Types) > 0 {
		where = append(where, "type IN ("+placeholders(len(filter.Types))+")")
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}
	if !filter.Since.IsZero() {
		where, args = append(where, "created_ts >= ?"), append(args, filter.Since.UnixNano())
	}

	query := `SELECT id, user_id, product_id, type, created_ts FROM interaction`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.NewestFirst {
		query += " ORDER BY created_ts DESC, rowid ASC"
	} else {
		query += " ORDER BY rowid ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.Unavailable(core.ModuleStore, err)
	}
	defer rows.Close()

	out := make([]core.Interaction, 0)
	for rows.Next() {
		var (
			in        core.Interaction
			typ       string
			createdTs int64
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.ProductID, &typ, &createdTs); err != nil {
			return nil, core.Unavailable(core.ModuleStore, err)
		}
		in.Type = core.InteractionType(typ)
		in.Timestamp = time.Unix(0, createdTs)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Unavailable(core.ModuleStore, err)
	}
	return out, nil
}

func (s *SQLInteractions) Create(ctx context.Context, in core.Interaction) (core.Interaction, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interaction (id, user_id, product_id, type, created_ts) VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.ProductID, string(in.Type), in.Timestamp.UnixNano(),
	)
	if err != nil {
		return core.Interaction{}, core.Unavailable(core.ModuleStore, err)
	}
	return in, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

var (
	_ ProductWriter         = (*SQLCatalog)(nil)
	_ core.ProductStore     = (*SQLCatalog)(nil)
	_ core.InteractionStore = (*SQLInteractions)(nil)
)
