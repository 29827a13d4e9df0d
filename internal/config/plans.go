package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/set-night/surveypay/internal/domain"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// PlanConfig is the plan configuration document.
type PlanConfig struct {
	Plans       []domain.PlanTier `json:"surveyPlans"`
	Payment     PaymentDetails    `json:"mpesaPaymentDetails"`
	DefaultPlan string            `json:"defaultPlan"`
}

type PaymentDetails struct {
	TillNumber   string `json:"tillNumber"`
	BusinessName string `json:"businessName"`
}

// LoadPlans reads the plan document from path, or the embedded default when
// path is empty.
func LoadPlans(path string) (*PlanConfig, error) {
	data, err := readDocument(path, "defaults/plans.json")
	if err != nil {
		return nil, fmt.Errorf("read plans: %w", err)
	}
	return ParsePlans(data)
}

func ParsePlans(data []byte) (*PlanConfig, error) {
	var cfg PlanConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal plans: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *PlanConfig) Validate() error {
	if len(c.Plans) == 0 {
		return fmt.Errorf("plans: no surveyPlans defined")
	}
	seen := make(map[string]bool, len(c.Plans))
	for _, p := range c.Plans {
		if p.Name == "" {
			return fmt.Errorf("plans: plan with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("plans: duplicate plan name %q", p.Name)
		}
		seen[p.Name] = true
		if p.Price.IsNegative() {
			return fmt.Errorf("plans: plan %q has negative price", p.Name)
		}
	}
	if c.DefaultPlan != "" && !seen[c.DefaultPlan] {
		return fmt.Errorf("plans: default plan %q not defined", c.DefaultPlan)
	}
	if c.Payment.TillNumber == "" {
		return fmt.Errorf("plans: mpesaPaymentDetails.tillNumber is required")
	}
	return nil
}

// Tiers returns a copy of the configured tiers.
func (c *PlanConfig) Tiers() []domain.PlanTier {
	return append([]domain.PlanTier(nil), c.Plans...)
}

func readDocument(path, fallback string) ([]byte, error) {
	if path == "" {
		return defaultsFS.ReadFile(fallback)
	}
	return os.ReadFile(path)
}
