package recovery_test

import (
	"testing"

	"github.com/AlexMorrigan04/PilotForce-sub007/internal/config"
	"github.com/AlexMorrigan04/PilotForce-sub007/internal/core/service/recovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates_StripsQueryFirst(t *testing.T) {
	cfg := config.RecoveryConfig{PartProbeLimit: 1}
	original := "https://bucket.s3.amazonaws.com/b1/survey.tif?X-Amz-Signature=abc&X-Amz-Expires=900"

	candidates := recovery.Candidates(original, cfg)

	require.NotEmpty(t, candidates)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/b1/survey.tif", candidates[0])
}

func TestCandidates_AlternateEndpoints(t *testing.T) {
	cfg := config.RecoveryConfig{
		AltEndpoints:   []string{"bucket.s3.eu-west-2.amazonaws.com", "bucket.s3.us-east-1.amazonaws.com"},
		PartProbeLimit: 1,
	}

	candidates := recovery.Candidates("https://bucket.s3.amazonaws.com/b1/survey.tif?sig=x", cfg)

	assert.Contains(t, candidates, "https://bucket.s3.eu-west-2.amazonaws.com/b1/survey.tif")
	assert.Contains(t, candidates, "https://bucket.s3.us-east-1.amazonaws.com/b1/survey.tif")
	// endpoint variants come after the query-stripped original, in config order
	assert.Equal(t, "https://bucket.s3.eu-west-2.amazonaws.com/b1/survey.tif", candidates[1])
}

func TestCandidates_TogglesReassembledPrefix(t *testing.T) {
	cfg := config.RecoveryConfig{PartProbeLimit: 1}

	plain := recovery.Candidates("https://host/b1/survey.tif", cfg)
	assert.Contains(t, plain, "https://host/b1/reassembled_survey.tif")

	prefixed := recovery.Candidates("https://host/b1/reassembled_survey.tif", cfg)
	assert.Contains(t, prefixed, "https://host/b1/survey.tif")
}

func TestCandidates_PartVariants(t *testing.T) {
	cfg := config.RecoveryConfig{PartProbeLimit: 3}

	candidates := recovery.Candidates("https://host/b1/survey.tif", cfg)

	assert.Contains(t, candidates, "https://host/b1/survey.tif.part0")
	assert.Contains(t, candidates, "https://host/b1/survey.tif.part2")
	assert.NotContains(t, candidates, "https://host/b1/survey.tif.part3")
}

func TestCandidates_NoDuplicatesAndNeverOriginal(t *testing.T) {
	cfg := config.RecoveryConfig{
		AltEndpoints:   []string{"host"}, // same host as the original
		PartProbeLimit: 2,
	}
	original := "https://host/b1/survey.tif"

	candidates := recovery.Candidates(original, cfg)

	seen := map[string]bool{}
	for _, c := range candidates {
		assert.NotEqual(t, original, c)
		assert.False(t, seen[c], "duplicate candidate %s", c)
		seen[c] = true
	}
}

func TestCandidates_InvalidURL(t *testing.T) {
	assert.Nil(t, recovery.Candidates("::not a url::", config.RecoveryConfig{}))
}
