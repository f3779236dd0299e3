// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Module is an installed site module. Pages under /modules/{dirname}/ are
// rendered in its context.
type Module struct {
	ID        int       `json:"id"`
	Dirname   string    `json:"dirname"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Weight    int       `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}
