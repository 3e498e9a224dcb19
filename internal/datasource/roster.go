package datasource

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/derby-sim/internal/models"
)

// RosterDocument is the wire format of a roster file or registry response.
// JSON documents are read with the same decoder.
type RosterDocument struct {
	Horses []HorseRecord `yaml:"horses" json:"horses"`
}

// HorseRecord is one imported horse. Missing lifecycle fields take the defaults of a new horse.
type HorseRecord struct {
	ID          string              `yaml:"id" json:"id"`
	FirstName   string              `yaml:"first_name" json:"first_name"`
	LastName    string              `yaml:"last_name" json:"last_name"`
	TeamID      string              `yaml:"team_id" json:"team_id"`
	Age         int                 `yaml:"age" json:"age"`
	Stats       models.Stats        `yaml:"stats" json:"stats"`
	Aptitude    models.Aptitude     `yaml:"aptitude" json:"aptitude"`
	Status      string              `yaml:"status" json:"status"`
	Condition   *int                `yaml:"condition" json:"condition"`
	Energy      *int                `yaml:"energy" json:"energy"`
	Fatigue     int                 `yaml:"fatigue" json:"fatigue"`
	InjuryWeeks int                 `yaml:"injury_weeks" json:"injury_weeks"`
	Potential   int                 `yaml:"potential" json:"potential"`
	Career      models.Career       `yaml:"career" json:"career"`
	History     []models.RaceRecord `yaml:"history" json:"history"`
	Skills      []models.Skill      `yaml:"skills" json:"skills"`
	TargetRace  string              `yaml:"target_race" json:"target_race"`
}

// ToHorse builds a horse from the record on top of the NewHorse defaults
func (r HorseRecord) ToHorse() (*models.Horse, error) {
	h := models.NewHorse(strings.TrimSpace(r.FirstName), strings.TrimSpace(r.LastName), r.TeamID, r.Age, r.Stats, r.Aptitude)

	if r.ID != "" {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidID, r.ID)
		}
		h.ID = id
	}
	if r.Status != "" {
		h.Status = models.HorseStatus(strings.ToLower(r.Status))
	}
	if r.Condition != nil {
		h.Condition = *r.Condition
	}
	if r.Energy != nil {
		h.Energy = *r.Energy
	}
	h.Fatigue = r.Fatigue
	h.InjuryWeeks = r.InjuryWeeks
	if r.Potential > 0 {
		h.Potential = r.Potential
	}
	h.Career = r.Career
	if r.History != nil {
		h.History = r.History
	}
	if r.Skills != nil {
		h.Skills = r.Skills
	}
	h.TargetRace = r.TargetRace

	h.Normalize()
	return h, nil
}

// Validator checks imported horses against the struct tags of models.Horse
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a roster validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks one horse
func (v *Validator) Validate(h *models.Horse) error {
	if err := v.validate.Struct(h); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidHorse, formatValidationErrors(err))
	}
	if h.Status == models.HorseStatusInjured && h.InjuryWeeks == 0 {
		return fmt.Errorf("%w: injured horse without injury weeks", models.ErrInvalidHorse)
	}
	return nil
}

func formatValidationErrors(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// DecodeRoster parses a YAML or JSON roster document and returns validated horses.
// Horse ids must be unique within the document.
func DecodeRoster(data []byte, v *Validator) ([]*models.Horse, error) {
	var doc RosterDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if v == nil {
		v = NewValidator()
	}

	horses := make([]*models.Horse, 0, len(doc.Horses))
	seen := make(map[uuid.UUID]bool, len(doc.Horses))
	for i, rec := range doc.Horses {
		h, err := rec.ToHorse()
		if err != nil {
			return nil, fmt.Errorf("horse %d: %w", i, err)
		}
		if err := v.Validate(h); err != nil {
			return nil, fmt.Errorf("horse %d (%s): %w", i, h.Name(), err)
		}
		if seen[h.ID] {
			return nil, fmt.Errorf("horse %d (%s): %w", i, h.Name(), models.ErrDuplicateKey)
		}
		seen[h.ID] = true
		horses = append(horses, h)
	}
	return horses, nil
}
