package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPlans_Embedded(t *testing.T) {
	cfg, err := LoadPlans("")
	require.NoError(t, err)

	assert.Equal(t, "3566188", cfg.Payment.TillNumber)
	assert.Equal(t, "Free", cfg.DefaultPlan)
	require.Len(t, cfg.Plans, 5)
	assert.True(t, cfg.Plans[0].IsFree())
	assert.Equal(t, "250", cfg.Plans[1].Price.String())
	assert.Equal(t, "20", cfg.Plans[1].Earning().String())
}

func TestLoadPlans_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"surveyPlans": [{"name": "Only", "dailySurveys": 1, "price": "99"}],
		"mpesaPaymentDetails": {"tillNumber": "111"},
		"defaultPlan": "Only"
	}`), 0o600))

	cfg, err := LoadPlans(path)
	require.NoError(t, err)
	assert.Equal(t, "111", cfg.Payment.TillNumber)
	assert.Equal(t, "Only", cfg.Plans[0].Name)
}

func TestLoadPlans_MissingFile(t *testing.T) {
	_, err := LoadPlans(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestParsePlans_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"no plans", `{"surveyPlans": [], "mpesaPaymentDetails": {"tillNumber": "1"}}`},
		{"empty name", `{"surveyPlans": [{"name": "", "price": "1"}], "mpesaPaymentDetails": {"tillNumber": "1"}}`},
		{"duplicate name", `{"surveyPlans": [{"name": "A", "price": "1"}, {"name": "A", "price": "2"}], "mpesaPaymentDetails": {"tillNumber": "1"}}`},
		{"negative price", `{"surveyPlans": [{"name": "A", "price": "-1"}], "mpesaPaymentDetails": {"tillNumber": "1"}}`},
		{"unparseable price", `{"surveyPlans": [{"name": "A", "price": "cheap"}], "mpesaPaymentDetails": {"tillNumber": "1"}}`},
		{"unknown default", `{"surveyPlans": [{"name": "A", "price": "1"}], "mpesaPaymentDetails": {"tillNumber": "1"}, "defaultPlan": "B"}`},
		{"no till", `{"surveyPlans": [{"name": "A", "price": "1"}], "mpesaPaymentDetails": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlans([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestTiersReturnsCopy(t *testing.T) {
	cfg, err := LoadPlans("")
	require.NoError(t, err)

	tiers := cfg.Tiers()
	tiers[0].Name = "Changed"
	assert.Equal(t, "Free", cfg.Plans[0].Name)
}

func TestLoadSurveys(t *testing.T) {
	cfg, err := LoadSurveys("")
	require.NoError(t, err)

	require.NotEmpty(t, cfg.Surveys)
	s, ok := cfg.Survey("transport")
	require.True(t, ok)
	assert.Equal(t, "Daily Commute", s.Title)

	_, ok = cfg.Survey("missing")
	assert.False(t, ok)
	assert.True(t, cfg.DefaultProgress.TotalEarnings.IsZero())
}
