package cli

import (
	"testing"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	valid := models.Config{
		PayloadDir: "/var/tmp/payload",
		OutputDir:  ".",
		Packages:   []string{"foo-1.0-1.x86_64.rpm"},
	}
	require.NoError(t, validateConfig(&valid))

	tests := []struct {
		name    string
		mutate  func(*models.Config)
		message string
	}{
		{
			name:    "missing payload dir",
			mutate:  func(c *models.Config) { c.PayloadDir = "" },
			message: "payload-dir is required",
		},
		{
			name:    "relative payload dir",
			mutate:  func(c *models.Config) { c.PayloadDir = "payload" },
			message: "not absolute",
		},
		{
			name:    "no packages",
			mutate:  func(c *models.Config) { c.Packages = nil },
			message: "no packages given",
		},
		{
			name:    "missing output dir",
			mutate:  func(c *models.Config) { c.OutputDir = "" },
			message: "output-dir is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := validateConfig(&config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)

			var genErr *models.GenError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, models.ErrInput, genErr.Type)
		})
	}
}
