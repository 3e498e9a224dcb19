package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/derby-sim/internal/models"
)

// horseProfile holds the nested horse data stored as one JSON document
type horseProfile struct {
	Stats    models.Stats        `json:"stats"`
	Aptitude models.Aptitude     `json:"aptitude"`
	Career   models.Career       `json:"career"`
	History  []models.RaceRecord `json:"history"`
	Skills   []models.Skill      `json:"skills"`
}

func encodeProfile(h *models.Horse) ([]byte, error) {
	data, err := json.Marshal(horseProfile{
		Stats:    h.Stats,
		Aptitude: h.Aptitude,
		Career:   h.Career,
		History:  h.History,
		Skills:   h.Skills,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode horse profile: %w", err)
	}
	return data, nil
}

func decodeProfile(data []byte, h *models.Horse) error {
	var p horseProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode horse profile: %w", err)
	}
	h.Stats = p.Stats
	h.Aptitude = p.Aptitude
	h.Career = p.Career
	h.History = p.History
	h.Skills = p.Skills
	if h.History == nil {
		h.History = []models.RaceRecord{}
	}
	if h.Skills == nil {
		h.Skills = []models.Skill{}
	}
	return nil
}

func encodeOutcome(o *models.RaceOutcome) (results, log []byte, err error) {
	if results, err = json.Marshal(o.Results); err != nil {
		return nil, nil, fmt.Errorf("failed to encode results: %w", err)
	}
	if log, err = json.Marshal(o.Log); err != nil {
		return nil, nil, fmt.Errorf("failed to encode log: %w", err)
	}
	return results, log, nil
}

func decodeOutcome(results, log []byte, o *models.RaceOutcome) error {
	if err := json.Unmarshal(results, &o.Results); err != nil {
		return fmt.Errorf("failed to decode results: %w", err)
	}
	if err := json.Unmarshal(log, &o.Log); err != nil {
		return fmt.Errorf("failed to decode log: %w", err)
	}
	return nil
}

// stamp fills the bookkeeping timestamps before a write
func stamp(h *models.Horse) {
	now := time.Now().UTC()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
}
