package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessTerms_Lookup(t *testing.T) {
	bt := DefaultBusinessTerms()

	assert.True(t, bt.Contains("LLC"))
	assert.True(t, bt.Contains("llc"))
	assert.True(t, bt.Contains("Trust"))
	assert.False(t, bt.Contains("FARON"))
	assert.False(t, bt.Contains(""))

	assert.True(t, bt.ContainedIn("ASSOC,"))
	assert.True(t, bt.ContainedIn("TRUSTEES."))
	assert.False(t, bt.ContainedIn("FARON"))

	assert.True(t, bt.IsLegalConstruct("TRUST"))
	assert.True(t, bt.IsLegalConstruct("estate"))
	assert.False(t, bt.IsLegalConstruct("LLC"))
}

func TestNewBusinessTerms_NormalizesInput(t *testing.T) {
	bt := NewBusinessTerms([]string{" llc ", "", "Corp"}, []string{"trust"})
	assert.True(t, bt.Contains("LLC"))
	assert.True(t, bt.Contains("CORP"))
	assert.False(t, bt.Contains(""))
	assert.True(t, bt.IsLegalConstruct("TRUST"))
}

func TestGazetteer_Lookup(t *testing.T) {
	g := NewGazetteer([]string{"Ocean", "corn neck", " SPRING "}, "New Shoreham")

	assert.True(t, g.HasStreet("OCEAN"))
	assert.True(t, g.HasStreet("ocean"))
	assert.True(t, g.HasStreet("CORN NECK"))
	assert.True(t, g.HasStreet(" spring "))
	assert.False(t, g.HasStreet("MAPLE"))

	assert.True(t, g.IsLocalCity("NEW SHOREHAM"))
	assert.True(t, g.IsLocalCity("new shoreham "))
	assert.False(t, g.IsLocalCity("YONKERS"))
	assert.False(t, g.IsLocalCity(""))

	assert.Equal(t, "NEW SHOREHAM", g.City())
	assert.Equal(t, []string{"CORN NECK", "OCEAN", "SPRING"}, g.Streets())
}

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refdata.yaml")

	bt := NewBusinessTerms([]string{"LLC", "INN"}, []string{"TRUST"})
	g := NewGazetteer([]string{"OCEAN", "CORN NECK"}, "NEW SHOREHAM")
	require.NoError(t, Save(path, bt, g))

	bt2, g2, err := Load(path, "FALLBACK")
	require.NoError(t, err)
	assert.True(t, bt2.Contains("LLC"))
	assert.True(t, bt2.Contains("INN"))
	assert.False(t, bt2.Contains("CORP"))
	assert.True(t, bt2.IsLegalConstruct("TRUST"))
	assert.Equal(t, "NEW SHOREHAM", g2.City())
	assert.Equal(t, []string{"CORN NECK", "OCEAN"}, g2.Streets())
}

func TestLoad_MissingSectionsFallBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streets-only.yaml")
	require.NoError(t, os.WriteFile(path, []byte("streets:\n  - OCEAN\n"), 0o644))

	bt, g, err := Load(path, "NEW SHOREHAM")
	require.NoError(t, err)
	assert.True(t, bt.Contains("LLC"), "empty dictionary falls back to the compiled-in terms")
	assert.True(t, g.HasStreet("OCEAN"))
	assert.Equal(t, "NEW SHOREHAM", g.City())
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "X")
	assert.Error(t, err)
}
