// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"xotheme/internal/models"
)

// BlockStore handles side block persistence.
type BlockStore struct {
	db *sql.DB
}

// NewBlockStore creates a new BlockStore.
func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

const blockColumns = `id, name, title, content, content_type, side, weight, module,
	array_to_string(group_ids, ','), visible,
	array_to_string(stylesheets, E'\n'), array_to_string(scripts, E'\n'),
	created_at, updated_at`

func scanBlock(row interface{ Scan(...any) error }) (*models.Block, error) {
	b := &models.Block{}
	var groups, styles, scripts string
	if err := row.Scan(
		&b.ID, &b.Name, &b.Title, &b.Content, &b.ContentType, &b.Side, &b.Weight, &b.Module,
		&groups, &b.Visible, &styles, &scripts, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Groups = parseIntList(groups)
	b.Stylesheets = splitLines(styles)
	b.Scripts = splitLines(scripts)
	return b, nil
}

// ListForModule returns the visible blocks shown on pages of module dirname
// (blocks without a module included), ordered by side and weight. Group
// filtering is left to the caller.
func (s *BlockStore) ListForModule(ctx context.Context, dirname string) ([]models.Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+blockColumns+`
		FROM blocks
		WHERE visible AND (module = '' OR module = $1)
		ORDER BY side, weight, name
	`, dirname)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// FindByName returns a block by its unique name, or nil.
func (s *BlockStore) FindByName(ctx context.Context, name string) (*models.Block, error) {
	b, err := scanBlock(s.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM blocks WHERE name = $1`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find block %s: %w", name, err)
	}
	return b, nil
}

// Create inserts a block and returns it with its generated id.
func (s *BlockStore) Create(ctx context.Context, b *models.Block) (*models.Block, error) {
	if b.ContentType == "" {
		b.ContentType = models.BlockContentHTML
	}
	if b.Side == "" {
		b.Side = models.BlockSideLeft
	}

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO blocks (name, title, content, content_type, side, weight, module,
		                    group_ids, visible, stylesheets, scripts)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
		        COALESCE(string_to_array(NULLIF($8, ''), ',')::int[], '{}'), $9,
		        COALESCE(string_to_array(NULLIF($10, ''), E'\n'), '{}'),
		        COALESCE(string_to_array(NULLIF($11, ''), E'\n'), '{}'))
		RETURNING id
	`, b.Name, b.Title, b.Content, b.ContentType, b.Side, b.Weight, b.Module,
		joinInts(b.Groups), b.Visible,
		strings.Join(b.Stylesheets, "\n"), strings.Join(b.Scripts, "\n"),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	return scanBlock(s.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = $1`, id))
}

// Delete removes a block by id.
func (s *BlockStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
