// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blocks is the default theme plugin. It loads the blocks visible
// to the visitor on the current page, renders their bodies and exposes them
// to templates grouped by page side.
package blocks

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"xotheme/internal/markdown"
	"xotheme/internal/models"
	"xotheme/internal/theme"
)

// ID is the plugin identifier used in theme configuration.
const ID = "blocks"

// Source lists the blocks that may appear on pages of a module.
type Source interface {
	ListForModule(ctx context.Context, dirname string) ([]models.Block, error)
}

// Rendered is a block ready for templates.
type Rendered struct {
	ID      string
	Name    string
	Title   string
	Content template.HTML
	Weight  int
}

// Plugin assigns xoBlocks to the theme template.
type Plugin struct {
	source Source
}

// New creates the plugin over source.
func New(source Source) *Plugin {
	return &Plugin{source: source}
}

// Register adds the plugin to reg under ID.
func Register(reg *theme.PluginRegistry, source Source) {
	reg.Register(ID, func() theme.Plugin { return New(source) })
}

// Init implements theme.Plugin.
func (p *Plugin) Init(ctx context.Context, t *theme.Theme) error {
	sc := t.Site()
	dirname := "system"
	if sc.Module != nil {
		dirname = sc.Module.Dirname
	}

	all, err := p.source.ListForModule(ctx, dirname)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}

	groups := sc.Groups()
	sides := map[models.BlockSide][]Rendered{
		models.BlockSideLeft:   {},
		models.BlockSideRight:  {},
		models.BlockSideCenter: {},
		models.BlockSideFooter: {},
	}
	seenCSS := make(map[string]bool)
	seenJS := make(map[string]bool)

	for i := range all {
		b := &all[i]
		if !b.ShowsOn(dirname) || !b.VisibleTo(groups) {
			continue
		}

		content, err := renderContent(b)
		if err != nil {
			slog.Warn("block render failed, skipping", "block", b.Name, "error", err)
			continue
		}
		sides[b.Side] = append(sides[b.Side], Rendered{
			ID:      t.ElementID("xo-block"),
			Name:    b.Name,
			Title:   b.Title,
			Content: content,
			Weight:  b.Weight,
		})

		for _, css := range b.Stylesheets {
			if !seenCSS[css] {
				seenCSS[css] = true
				t.AddStylesheet(css, nil, "")
			}
		}
		for _, js := range b.Scripts {
			if !seenJS[js] {
				seenJS[js] = true
				t.AddScript(js, nil, "")
			}
		}
	}

	xoBlocks := make(map[string][]Rendered, len(sides))
	for side, list := range sides {
		xoBlocks[string(side)] = list
	}
	t.Template.AssignAll(map[string]any{
		"xoBlocks":         xoBlocks,
		"xoops_showlblock": len(sides[models.BlockSideLeft]) > 0,
		"xoops_showrblock": len(sides[models.BlockSideRight]) > 0,
		"xoops_showcblock": len(sides[models.BlockSideCenter]) > 0,
	})
	slog.Debug("blocks loaded", "module", dirname, "count", len(all))
	return nil
}

func renderContent(b *models.Block) (template.HTML, error) {
	if b.ContentType == models.BlockContentMarkdown {
		out, err := markdown.ToHTML(b.Content)
		if err != nil {
			return "", err
		}
		return template.HTML(out), nil
	}
	return template.HTML(b.Content), nil
}
