package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copylab/adlens/internal/model"
)

func TestNormalize_FlatObject(t *testing.T) {
	outcome := Normalize(`{"title_score": 8, "cta": "strong"}`)

	require.Equal(t, model.StatusSucceeded, outcome.Status)
	assert.Equal(t, map[string]string{
		"title_score": "8",
		"cta":         "strong",
	}, outcome.Fields)
}

func TestNormalize_NestedObject(t *testing.T) {
	outcome := Normalize(`{"details": {"sentiment": {"score": 0.85, "label": "positive"}}, "summary": "good"}`)

	require.Equal(t, model.StatusSucceeded, outcome.Status)
	assert.Equal(t, map[string]string{
		"details_sentiment_score": "0.85",
		"details_sentiment_label": "positive",
		"summary":                 "good",
	}, outcome.Fields)
}

func TestNormalize_Sequences(t *testing.T) {
	outcome := Normalize(`{"keywords": ["elisa", "kit", "assay"], "scores": [1, 2.5, 3]}`)

	require.Equal(t, model.StatusSucceeded, outcome.Status)
	assert.Equal(t, "elisa; kit; assay", outcome.Fields["keywords"])
	assert.Equal(t, "1; 2.5; 3", outcome.Fields["scores"])
}

func TestNormalize_ScalarCoercion(t *testing.T) {
	outcome := Normalize(`{"approved": true, "notes": null, "count": 42}`)

	require.Equal(t, model.StatusSucceeded, outcome.Status)
	assert.Equal(t, "true", outcome.Fields["approved"])
	assert.Equal(t, "", outcome.Fields["notes"])
	assert.Equal(t, "42", outcome.Fields["count"])
}

func TestNormalize_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"title_analysis\": \"clear\"}\n```"
	outcome := Normalize(raw)

	require.Equal(t, model.StatusSucceeded, outcome.Status)
	assert.Equal(t, "clear", outcome.Fields["title_analysis"])
}

func TestNormalize_ProseAroundObject(t *testing.T) {
	outcome := Normalize(`Here is the analysis you asked for: {"strength": "high"} Hope it helps!`)

	require.Equal(t, model.StatusSucceeded, outcome.Status)
	assert.Equal(t, "high", outcome.Fields["strength"])
}

func TestNormalize_NotJSON(t *testing.T) {
	outcome := Normalize("not json")

	require.Equal(t, model.StatusDegraded, outcome.Status)
	assert.Equal(t, "not json", outcome.RawText)
	assert.Contains(t, outcome.Reason, "parse failure")
}

func TestNormalize_TopLevelArray(t *testing.T) {
	outcome := Normalize(`["a", "b"]`)

	require.Equal(t, model.StatusDegraded, outcome.Status)
	assert.Equal(t, `["a", "b"]`, outcome.RawText)
	assert.Contains(t, outcome.Reason, "not a JSON object")
}

func TestNormalize_EmptyResponse(t *testing.T) {
	outcome := Normalize("")

	require.Equal(t, model.StatusDegraded, outcome.Status)
	assert.Equal(t, "", outcome.RawText)
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := `{"a": {"b": 1, "c": {"d": [1, 2]}}, "e": "x"}`
	first := Normalize(raw)
	second := Normalize(raw)

	require.Equal(t, model.StatusSucceeded, first.Status)
	assert.Equal(t, first.Fields, second.Fields)
	assert.Equal(t, map[string]string{
		"a_b":   "1",
		"a_c_d": "1; 2",
		"e":     "x",
	}, first.Fields)
}

func TestUnify_FillsMissingKeys(t *testing.T) {
	rows := []model.Row{
		{"x": "1"},
		{"y": "2"},
	}

	unified := Unify(rows)

	require.Len(t, unified, 2)
	assert.Equal(t, model.Row{"x": "1", "y": ""}, unified[0])
	assert.Equal(t, model.Row{"x": "", "y": "2"}, unified[1])
}

func TestUnify_Idempotent(t *testing.T) {
	rows := []model.Row{
		{"x": "1"},
		{"y": "2", "z": "3"},
	}

	once := Unify(rows)
	twice := Unify(once)

	assert.Equal(t, once, twice)
}

func TestUnify_Empty(t *testing.T) {
	assert.Empty(t, Unify(nil))
	assert.Empty(t, Unify([]model.Row{}))
}

func TestColumns_Ordering(t *testing.T) {
	rows := []model.Row{
		{
			model.KeyTitle:          "A",
			model.KeySnippet:        "B",
			model.KeyDisplayedLink:  "c.com",
			model.KeyAnalysisStatus: "succeeded",
			"zeta_score":            "1",
			"alpha_score":           "2",
		},
	}

	cols := Columns(rows)
	assert.Equal(t, []string{
		model.KeyTitle,
		model.KeySnippet,
		model.KeyDisplayedLink,
		model.KeyAnalysisStatus,
		"alpha_score",
		"zeta_score",
	}, cols)
}
