package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoreham-data/reconcile-cli/internal/refdata"
)

func newNormalizer() *Normalizer {
	gaz := refdata.NewGazetteer([]string{"OCEAN", "OCEAN DR", "CORN NECK", "SPRING ST"}, "NEW SHOREHAM")
	return New(gaz)
}

func TestSubstitute_DelimiterPolicy(t *testing.T) {
	raw := "456 OCEAN DR::#^#::NEW SHOREHAM:^#^: RI 02807"
	assert.Equal(t, "456 OCEAN DR, NEW SHOREHAM RI 02807", Substitute(raw))
}

func TestNormalize_FullAddress(t *testing.T) {
	n := newNormalizer()
	addr := n.Normalize("456 OCEAN DR::#^#::NEW SHOREHAM:^#^: RI 02807")

	require.NotNil(t, addr.City)
	assert.Equal(t, "NEW SHOREHAM", addr.City.Value)
	require.NotNil(t, addr.State)
	assert.Equal(t, "RI", addr.State.Value)
	require.NotNil(t, addr.Zip)
	assert.Equal(t, "02807", addr.Zip.Value)
	require.NotNil(t, addr.StreetNumber)
	assert.Equal(t, "456", addr.StreetNumber.Value)
	require.NotNil(t, addr.StreetName)
	assert.Equal(t, "OCEAN", addr.StreetName.Value)
	require.NotNil(t, addr.StreetType)
	assert.Equal(t, "DR", addr.StreetType.Value)
	assert.True(t, addr.IsLocal)
	assert.False(t, addr.IsPOBox)
}

func TestNormalize_NonLocalCityNeverFlagged(t *testing.T) {
	n := newNormalizer()
	// Regression guard: a mailing address with an unrecognized street
	// must not be flagged local.
	addr := n.Normalize("12 MAPLE AVE::#^#::YONKERS:^#^: NY 10701")

	require.NotNil(t, addr.City)
	assert.Equal(t, "YONKERS", addr.City.Value)
	assert.False(t, addr.IsLocal)
}

func TestNormalize_LocalByStreetOnly(t *testing.T) {
	n := newNormalizer()
	addr := n.Normalize("101 CORN NECK RD::#^#::PROVIDENCE:^#^: RI 02903")
	assert.True(t, addr.IsLocal)
}

func TestNormalize_LocalByCityOnly(t *testing.T) {
	n := newNormalizer()
	addr := n.Normalize("9 UNKNOWN WAY::#^#::NEW SHOREHAM:^#^: RI 02807")
	assert.True(t, addr.IsLocal)
}

func TestNormalize_POBox(t *testing.T) {
	n := newNormalizer()
	for _, raw := range []string{
		"P.O. BOX 123::#^#::NEW SHOREHAM:^#^: RI 02807",
		"PO BOX 123::#^#::NEW SHOREHAM:^#^: RI 02807",
		"BOX 123::#^#::NEW SHOREHAM:^#^: RI 02807",
	} {
		addr := n.Normalize(raw)
		assert.True(t, addr.IsPOBox, raw)
		require.NotNil(t, addr.POBoxNumber, raw)
		assert.Equal(t, "123", addr.POBoxNumber.Value, raw)
		assert.Nil(t, addr.StreetName, raw)
	}
}

func TestNormalize_Unit(t *testing.T) {
	n := newNormalizer()
	addr := n.Normalize("456 OCEAN DR APT 2B::#^#::NEW SHOREHAM:^#^: RI 02807")

	require.NotNil(t, addr.UnitType)
	assert.Equal(t, "APT", addr.UnitType.Value)
	require.NotNil(t, addr.UnitNumber)
	assert.Equal(t, "2B", addr.UnitNumber.Value)
	require.NotNil(t, addr.StreetName)
	assert.Equal(t, "OCEAN", addr.StreetName.Value)
}

func TestNormalize_UnresolvedFieldsStayNil(t *testing.T) {
	n := newNormalizer()
	addr := n.Normalize("GRACE COVE")

	assert.Nil(t, addr.StreetNumber)
	assert.Nil(t, addr.City)
	assert.Nil(t, addr.State)
	assert.Nil(t, addr.Zip)
	assert.False(t, addr.IsLocal)
}

func TestNormalize_SingleLineZipState(t *testing.T) {
	n := newNormalizer()
	addr := n.Normalize("456 OCEAN DR RI 02807")

	require.NotNil(t, addr.Zip)
	assert.Equal(t, "02807", addr.Zip.Value)
	require.NotNil(t, addr.State)
	assert.Equal(t, "RI", addr.State.Value)
	// City is ambiguous on a single line and must not be guessed.
	assert.Nil(t, addr.City)
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := newNormalizer()
	addr := n.Normalize("")
	assert.Nil(t, addr.StreetName)
	assert.False(t, addr.IsLocal)
	assert.False(t, addr.IsPOBox)
}

func TestNormalize_Zip9(t *testing.T) {
	n := newNormalizer()
	addr := n.Normalize("456 OCEAN DR::#^#::NEW SHOREHAM:^#^: RI 02807-1234")
	require.NotNil(t, addr.Zip)
	assert.Equal(t, "02807", addr.Zip.Value)
}
