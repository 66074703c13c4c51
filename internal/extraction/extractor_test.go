package extraction

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DandaAkhilReddy/reddy/internal/common"
)

func TestExtractDirect(t *testing.T) {
	e := NewExtractor(nil)

	res, err := e.Extract(`{"waist_circumference_cm": 82.5, "body_fat_percentage": 18.2}`)
	require.NoError(t, err)
	assert.Equal(t, StrategyDirect, res.Strategy)
	assert.Equal(t, 1.0, res.Reliability)
	assert.Empty(t, res.Tags)
	assert.Equal(t, 82.5, res.Data["waist_circumference_cm"])
}

func TestExtractMarkdownFence(t *testing.T) {
	e := NewExtractor(nil)
	raw := "Here is the analysis:\n```json\n{\"chest_circumference_cm\": 104}\n```\nLet me know if you need more."

	res, err := e.Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyMarkdown, res.Strategy)
	assert.Equal(t, 0.95, res.Reliability)
	assert.Equal(t, float64(104), res.Data["chest_circumference_cm"])
}

func TestExtractFenceWithoutLanguage(t *testing.T) {
	e := NewExtractor(nil)

	res, err := e.Extract("```\n{\"hip_circumference_cm\": 96.0}\n```")
	require.NoError(t, err)
	assert.Equal(t, StrategyMarkdown, res.Strategy)
}

func TestExtractEmbeddedObject(t *testing.T) {
	e := NewExtractor(nil)
	raw := `Based on the photos I estimate {"measurements": {"waist_circumference_cm": 80}, "note": "brace } in string"} and that concludes it.`

	res, err := e.Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyRegex, res.Strategy)
	assert.Equal(t, 0.85, res.Reliability)

	nested, ok := res.Data["measurements"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(80), nested["waist_circumference_cm"])
	assert.Equal(t, "brace } in string", res.Data["note"])
}

func TestExtractRepairsTrailingComma(t *testing.T) {
	e := NewExtractor(nil)

	res, err := e.Extract(`{"waist_circumference_cm": 80, "hip_circumference_cm": 95,}`)
	require.NoError(t, err)
	assert.Equal(t, StrategyRepaired, res.Strategy)
	assert.Equal(t, 0.65, res.Reliability)
	assert.Contains(t, res.Tags, TagErrorRepaired)
	assert.Equal(t, float64(95), res.Data["hip_circumference_cm"])
}

func TestExtractRepairsPythonLiterals(t *testing.T) {
	e := NewExtractor(nil)

	res, err := e.Extract(`{"visible_torso": True, "occluded": False, "calf_circumference_cm": None}`)
	require.NoError(t, err)
	assert.Equal(t, StrategyRepaired, res.Strategy)
	assert.Equal(t, true, res.Data["visible_torso"])
	assert.Nil(t, res.Data["calf_circumference_cm"])
}

func TestExtractUnparseable(t *testing.T) {
	e := NewExtractor(nil)

	for _, raw := range []string{"", "I cannot analyze these images.", "{\"never\": \"closed\""} {
		res, err := e.Extract(raw)
		assert.Nil(t, res)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrExtraction), "raw=%q", raw)
	}
}

func TestExtractUnparseableCarriesAttemptsAndRaw(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract("I cannot analyze these images.")
	require.Error(t, err)

	var uerr *UnparseableError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, []Strategy{StrategyDirect, StrategyRepaired}, uerr.Attempted)
	assert.Equal(t, "I cannot analyze these images.", uerr.Raw)
	assert.Contains(t, err.Error(), "direct")
	assert.Contains(t, err.Error(), "repaired")

	// a balanced but hopeless object also walks the regex path, and long
	// responses are truncated so the error stays loggable
	_, err = e.Extract(`Sure! {"a": <<bad>>, "filler": "` + strings.Repeat("x", 500) + `"}`)
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, uerr.Attempted, StrategyRegex)
	assert.LessOrEqual(t, len(uerr.Raw), rawSnippetMax+len("..."))
	assert.True(t, strings.HasSuffix(uerr.Raw, "..."))
}

func TestExtractRejectsNonObject(t *testing.T) {
	e := NewExtractor(nil)

	_, err := e.Extract(`[1, 2, 3]`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExtraction))
}

func TestStrategyReliability(t *testing.T) {
	assert.Equal(t, 1.0, StrategyDirect.Reliability())
	assert.Equal(t, 0.95, StrategyMarkdown.Reliability())
	assert.Equal(t, 0.85, StrategyRegex.Reliability())
	assert.Equal(t, 0.65, StrategyRepaired.Reliability())
	assert.Equal(t, 0.0, Strategy("bogus").Reliability())
}
