package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ads.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseAdsCSV(t *testing.T) {
	path := writeCSV(t, `Title,Snippet,Display URL,Extensions
Human IL-6 ELISA Kit,High sensitivity assay,biotools.example.com,Free shipping
Mouse TNF ELISA Kit,"Validated, ready to use",assays.example.com,
`)

	recs, err := ParseAdsCSV(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Human IL-6 ELISA Kit", recs[0].Title)
	assert.Equal(t, "High sensitivity assay", recs[0].Snippet)
	assert.Equal(t, "biotools.example.com", recs[0].DisplayedLink)
	assert.Equal(t, "Free shipping", recs[0].Extensions)

	assert.Equal(t, "Validated, ready to use", recs[1].Snippet)
	assert.Empty(t, recs[1].Extensions)
}

func TestParseAdsCSV_ExtensionsColumnOptional(t *testing.T) {
	path := writeCSV(t, `Title,Snippet,Display URL
Ad One,Snippet one,one.example.com
`)

	recs, err := ParseAdsCSV(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Extensions)
}

func TestParseAdsCSV_MissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, `Title,Display URL
Ad One,one.example.com
`)

	_, err := ParseAdsCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "Snippet"`)
}

func TestParseAdsCSV_SkipsBlankRows(t *testing.T) {
	path := writeCSV(t, `Title,Snippet,Display URL
Ad One,Snippet one,one.example.com
,,
`)

	recs, err := ParseAdsCSV(path)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestParseAdsCSV_NoDataRows(t *testing.T) {
	path := writeCSV(t, "Title,Snippet,Display URL\n")

	_, err := ParseAdsCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestParseAdsCSV_FileNotFound(t *testing.T) {
	_, err := ParseAdsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
