package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermConstructors(t *testing.T) {
	assert.Nil(t, Term(""))
	assert.Nil(t, Derived("RAW", ""))

	tm := Term("OCEAN")
	require.NotNil(t, tm)
	assert.Equal(t, "OCEAN", tm.Value)
	assert.Equal(t, "OCEAN", tm.Raw)

	d := Derived("Ocean Dr.", "OCEAN")
	require.NotNil(t, d)
	assert.Equal(t, "OCEAN", d.Value)
	assert.Equal(t, "Ocean Dr.", d.Raw)
}

func TestAttributedTermString_NilSafe(t *testing.T) {
	var tm *AttributedTerm
	assert.Equal(t, "", tm.String())
	assert.Equal(t, "OCEAN", Term("OCEAN").String())
}

func TestNameParsedAndDisplay(t *testing.T) {
	unparsed := Name{Complete: "ACME LLC"}
	assert.False(t, unparsed.Parsed())
	assert.Equal(t, "ACME LLC", unparsed.Display())

	parsed := Name{First: Term("DOUGLAS"), Last: Term("FARON")}
	assert.True(t, parsed.Parsed())
	assert.Equal(t, "DOUGLAS FARON", parsed.Display())

	partial := Name{Complete: "FARON", Last: Term("FARON")}
	assert.False(t, partial.Parsed())
	assert.Equal(t, "FARON", partial.Display())
}

func TestLocationIdentifierKey(t *testing.T) {
	l := LocationIdentifier{Source: SourceTaxRoll, IDType: "parcel", ID: "123-45"}
	assert.Equal(t, "tax_roll/parcel/123-45", l.Key())
}

func TestEntityValidate(t *testing.T) {
	loc := LocationIdentifier{Source: SourceDonorRoster, IDType: "donor", ID: "7"}

	ok := &Entity{Kind: KindIndividual, Location: loc, Name: Name{Complete: "DOUGLAS FARON"}}
	assert.NoError(t, ok.Validate())

	hh := &Entity{
		Kind:     KindHousehold,
		Location: loc,
		Members: []Entity{
			{Kind: KindIndividual, Name: Name{Complete: "DOUGLAS"}},
			{Kind: KindIndividual, Name: Name{Complete: "BARBARA"}},
		},
	}
	assert.NoError(t, hh.Validate())

	nested := &Entity{
		Kind:     KindHousehold,
		Location: loc,
		Members:  []Entity{{Kind: KindHousehold}},
	}
	assert.Error(t, nested.Validate())

	indWithMembers := &Entity{
		Kind:     KindIndividual,
		Location: loc,
		Members:  []Entity{{Kind: KindIndividual}},
	}
	assert.Error(t, indWithMembers.Validate())

	noID := &Entity{Kind: KindBusiness}
	assert.Error(t, noID.Validate())

	unknown := &Entity{Kind: EntityKind("cooperative"), Location: loc}
	assert.Error(t, unknown.Validate())
}

func TestEntityGroupContains(t *testing.T) {
	g := &EntityGroup{Members: []string{"tax_roll/parcel/1", "donor_roster/donor/2"}}
	assert.True(t, g.Contains("donor_roster/donor/2"))
	assert.False(t, g.Contains("tax_roll/parcel/9"))
}
