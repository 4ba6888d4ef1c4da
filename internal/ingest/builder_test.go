package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoreham-data/reconcile-cli/internal/address"
	"github.com/shoreham-data/reconcile-cli/internal/model"
	"github.com/shoreham-data/reconcile-cli/internal/nameparse"
	"github.com/shoreham-data/reconcile-cli/internal/refdata"
)

func newBuilder() *Builder {
	gaz := refdata.NewGazetteer([]string{"OCEAN", "CORN NECK"}, "NEW SHOREHAM")
	return NewBuilder(
		nameparse.New(refdata.DefaultBusinessTerms()),
		address.New(gaz),
	)
}

func parcelLoc(id string) model.LocationIdentifier {
	return model.LocationIdentifier{Source: model.SourceTaxRoll, IDType: "parcel", ID: id}
}

func TestBuild_Individual(t *testing.T) {
	b := newBuilder()

	e, err := b.Build(parcelLoc("001-23"), "FARON, DOUGLAS",
		"456 OCEAN DR::#^#::NEW SHOREHAM:^#^: RI 02807",
		[]string{"12 MAPLE AVE, YONKERS NY 10701"})
	require.NoError(t, err)

	assert.Equal(t, model.KindIndividual, e.Kind)
	assert.Equal(t, "DOUGLAS", e.Name.First.Value)
	assert.Equal(t, "FARON", e.Name.Last.Value)

	require.NotNil(t, e.Contact)
	require.NotNil(t, e.Contact.Primary)
	assert.True(t, e.Contact.Primary.IsLocal)
	assert.Equal(t, "02807", e.Contact.Primary.Zip.Value)
	require.Len(t, e.Contact.Secondary, 1)
	assert.Equal(t, "YONKERS", e.Contact.Secondary[0].City.Value)
	assert.False(t, e.Contact.Secondary[0].IsLocal)
}

func TestBuild_HouseholdExpandsMembers(t *testing.T) {
	b := newBuilder()

	e, err := b.Build(parcelLoc("002-01"), "FARON, DOUGLAS & BARBARA",
		"456 OCEAN DR, NEW SHOREHAM RI 02807", nil)
	require.NoError(t, err)

	assert.Equal(t, model.KindHousehold, e.Kind)
	require.Len(t, e.Members, 2)
	assert.Equal(t, model.KindIndividual, e.Members[0].Kind)
	assert.Equal(t, "tax_roll/parcel/002-01#m0", e.Members[0].Location.Key())
	assert.Equal(t, "tax_roll/parcel/002-01#m1", e.Members[1].Location.Key())
	assert.Equal(t, "DOUGLAS FARON", e.Members[0].Name.Display())
	assert.Equal(t, "BARBARA FARON", e.Members[1].Name.Display())
	assert.NoError(t, e.Validate())
}

func TestBuild_Business(t *testing.T) {
	b := newBuilder()

	e, err := b.Build(parcelLoc("003-07"), "1661 INN CORP",
		"1 SPRING ST, NEW SHOREHAM RI 02807", nil)
	require.NoError(t, err)
	assert.Equal(t, model.KindBusiness, e.Kind)
	assert.Empty(t, e.Members)
}

func TestBuild_NoAddressesMeansNilContact(t *testing.T) {
	b := newBuilder()

	e, err := b.Build(parcelLoc("004-01"), "FARON, DOUGLAS", "", []string{""})
	require.NoError(t, err)
	assert.Nil(t, e.Contact)
}

func TestBuild_MissingIDFailsValidation(t *testing.T) {
	b := newBuilder()

	_, err := b.Build(model.LocationIdentifier{Source: model.SourceTaxRoll, IDType: "parcel"},
		"FARON, DOUGLAS", "", nil)
	assert.Error(t, err)
}
