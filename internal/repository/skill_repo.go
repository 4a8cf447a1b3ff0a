package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// SkillLevel is a skill name with its proficiency level.
type SkillLevel struct {
	Name  string
	Level int
}

// NormalizeSkillName trims and lower-cases a skill name.
func NormalizeSkillName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ensureSkills creates missing skills and returns them keyed by normalized name.
func ensureSkills(tx *gorm.DB, items []SkillLevel) (map[string]models.Skill, error) {
	names := make([]string, 0, len(items))
	rows := make([]models.Skill, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		name := NormalizeSkillName(item.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		rows = append(rows, models.Skill{Name: name})
	}

	result := make(map[string]models.Skill, len(names))
	if len(rows) == 0 {
		return result, nil
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var skills []models.Skill
	if err := tx.Where("name IN ?", names).Find(&skills).Error; err != nil {
		return nil, err
	}
	for _, skill := range skills {
		result[skill.Name] = skill
	}

	return result, nil
}

func dedupeLevels(items []SkillLevel) []SkillLevel {
	byName := make(map[string]int, len(items))
	result := make([]SkillLevel, 0, len(items))
	for _, item := range items {
		name := NormalizeSkillName(item.Name)
		if name == "" {
			continue
		}
		if idx, ok := byName[name]; ok {
			result[idx].Level = item.Level
			continue
		}
		byName[name] = len(result)
		result = append(result, SkillLevel{Name: name, Level: item.Level})
	}
	return result
}
