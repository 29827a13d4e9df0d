package config

import (
	"encoding/json"
	"fmt"

	"github.com/set-night/surveypay/internal/domain"
)

// SurveyConfig is the survey configuration document: survey definitions and
// the progress shape every new session starts from.
type SurveyConfig struct {
	Surveys         []domain.Survey     `json:"surveys"`
	DefaultProgress domain.UserProgress `json:"userProgress"`
}

func LoadSurveys(path string) (*SurveyConfig, error) {
	data, err := readDocument(path, "defaults/surveys.json")
	if err != nil {
		return nil, fmt.Errorf("read surveys: %w", err)
	}
	var cfg SurveyConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal surveys: %w", err)
	}
	return &cfg, nil
}

func (c *SurveyConfig) Survey(id string) (domain.Survey, bool) {
	for _, s := range c.Surveys {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Survey{}, false
}
