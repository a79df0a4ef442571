// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Skill level bounds.
const (
	MinSkillLevel = 0
	MaxSkillLevel = 100
)

// Skill is a proficiency entry grouped by category.
type Skill struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    int    `json:"level"`
	IconName string `json:"iconName,omitempty"`
}

// NewSkill holds the fields for creating a skill.
type NewSkill struct {
	Name     string
	Category string
	Level    int
	IconName string
}

// SkillPatch is a partial update. Nil fields are left unchanged.
type SkillPatch struct {
	Name     *string
	Category *string
	Level    *int
	IconName *string
}

// Apply copies the set fields of p onto s.
func (p SkillPatch) Apply(s *Skill) {
	setIf(&s.Name, p.Name)
	setIf(&s.Category, p.Category)
	setIf(&s.Level, p.Level)
	setIf(&s.IconName, p.IconName)
}
