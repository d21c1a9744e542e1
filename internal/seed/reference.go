// Package seed loads reference data and generates demo content for development and tests.
package seed

import (
	_ "embed"
	"fmt"

	"courtside/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed reference.yaml
var referenceYAML []byte

// Reference is the fixed data every installation needs: languages, roles,
// content statuses with localized labels, and the league's teams.
type Reference struct {
	Languages []LanguageFixture `yaml:"languages"`
	Roles     []RoleFixture     `yaml:"roles"`
	Statuses  []StatusFixture   `yaml:"statuses"`
	Teams     []TeamFixture     `yaml:"teams"`
}

type LanguageFixture struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type RoleFixture struct {
	Name        string `yaml:"name"`
	Weight      int    `yaml:"weight"`
	Description string `yaml:"description"`
}

// StatusFixture names a status and its label per language code.
type StatusFixture struct {
	Name         string            `yaml:"name"`
	DisplayNames map[string]string `yaml:"display_names"`
}

// TeamFixture is a team with its name per language code.
type TeamFixture struct {
	ID     uint              `yaml:"id"`
	Symbol string            `yaml:"symbol"`
	Names  map[string]string `yaml:"names"`
}

// LoadReference parses the embedded reference fixture.
func LoadReference() (*Reference, error) {
	var ref Reference
	if err := yaml.Unmarshal(referenceYAML, &ref); err != nil {
		return nil, fmt.Errorf("parse reference fixture: %w", err)
	}
	return &ref, nil
}

// SeedReference inserts the reference data, updating rows that already exist.
// Running it twice leaves the database unchanged.
func SeedReference(db *gorm.DB) error {
	ref, err := LoadReference()
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		langIDs := make(map[string]uint, len(ref.Languages))
		for _, l := range ref.Languages {
			lang := models.Language{}
			if err := tx.Where(models.Language{Code: l.Code}).
				Assign(models.Language{Name: l.Name}).
				FirstOrCreate(&lang).Error; err != nil {
				return fmt.Errorf("language %s: %w", l.Code, err)
			}
			langIDs[l.Code] = lang.ID
		}

		for _, r := range ref.Roles {
			role := models.Role{}
			if err := tx.Where(models.Role{Name: r.Name}).
				Assign(map[string]any{"weight": r.Weight, "description": r.Description}).
				FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("role %s: %w", r.Name, err)
			}
		}

		for _, s := range ref.Statuses {
			status := models.PostStatus{}
			if err := tx.Where(models.PostStatus{Name: s.Name}).FirstOrCreate(&status).Error; err != nil {
				return fmt.Errorf("post status %s: %w", s.Name, err)
			}
			if err := tx.Where(models.PostCommentStatus{Name: s.Name}).
				FirstOrCreate(&models.PostCommentStatus{}).Error; err != nil {
				return fmt.Errorf("comment status %s: %w", s.Name, err)
			}
			for _, l := range ref.Languages {
				label, ok := s.DisplayNames[l.Code]
				if !ok {
					continue
				}
				if err := tx.Where(models.PostStatusDisplayName{StatusID: status.ID, LanguageID: langIDs[l.Code]}).
					Assign(models.PostStatusDisplayName{DisplayName: label}).
					FirstOrCreate(&models.PostStatusDisplayName{}).Error; err != nil {
					return fmt.Errorf("status label %s/%s: %w", s.Name, l.Code, err)
				}
			}
		}

		for _, t := range ref.Teams {
			team := models.Team{}
			if err := tx.Where(models.Team{ID: t.ID}).
				Assign(models.Team{Symbol: t.Symbol}).
				FirstOrCreate(&team).Error; err != nil {
				return fmt.Errorf("team %s: %w", t.Symbol, err)
			}
			for _, l := range ref.Languages {
				name, ok := t.Names[l.Code]
				if !ok {
					continue
				}
				if err := tx.Where(models.TeamName{TeamID: t.ID, LanguageID: langIDs[l.Code]}).
					Assign(models.TeamName{Name: name}).
					FirstOrCreate(&models.TeamName{}).Error; err != nil {
					return fmt.Errorf("team name %s/%s: %w", t.Symbol, l.Code, err)
				}
			}
		}
		return nil
	})
}
