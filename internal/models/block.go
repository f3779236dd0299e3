// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockSide is the page region a block is displayed in.
type BlockSide string

const (
	BlockSideLeft   BlockSide = "left"
	BlockSideRight  BlockSide = "right"
	BlockSideCenter BlockSide = "center"
	BlockSideFooter BlockSide = "footer"
)

// BlockContentType tells how a block body is turned into HTML.
type BlockContentType string

const (
	BlockContentHTML     BlockContentType = "html"
	BlockContentMarkdown BlockContentType = "markdown"
)

// Block is a piece of side content shown around the main page content.
type Block struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	ContentType BlockContentType `json:"content_type"`
	Side        BlockSide        `json:"side"`
	Weight      int              `json:"weight"`
	Module      string           `json:"module"` // dirname, empty for all pages
	Groups      []int            `json:"groups"` // empty for everyone
	Visible     bool             `json:"visible"`
	Stylesheets []string         `json:"stylesheets"`
	Scripts     []string         `json:"scripts"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// VisibleTo reports whether a visitor in any of groups may see the block.
func (b *Block) VisibleTo(groups []int) bool {
	if !b.Visible {
		return false
	}
	if len(b.Groups) == 0 {
		return true
	}
	for _, want := range b.Groups {
		for _, g := range groups {
			if g == want {
				return true
			}
		}
	}
	return false
}

// ShowsOn reports whether the block belongs on pages of module dirname.
func (b *Block) ShowsOn(dirname string) bool {
	return b.Module == "" || b.Module == dirname
}
