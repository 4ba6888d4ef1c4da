package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/shoreham-data/reconcile-cli/internal/model"
)

func writeTaxRoll(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxroll.csv")
	require.NoError(t, os.WriteFile(path, []byte(rows), 0o644))
	return path
}

func TestLoadTaxRoll(t *testing.T) {
	b := newBuilder()
	path := writeTaxRoll(t,
		"parcel_id,owner,address,mailing\n"+
			"001-23,\"FARON, DOUGLAS\",456 OCEAN DR::#^#::NEW SHOREHAM:^#^: RI 02807,\"12 MAPLE AVE, YONKERS NY 10701\"\n"+
			"003-07,1661 INN CORP,1 SPRING ST::#^#::NEW SHOREHAM RI 02807\n"+
			",MISSING PARCEL,1 SPRING ST\n")

	entities, err := b.LoadTaxRoll(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entities, 2, "the row without a parcel id is skipped")

	assert.Equal(t, "tax_roll/parcel/001-23", entities[0].Location.Key())
	assert.Equal(t, model.KindIndividual, entities[0].Kind)
	require.NotNil(t, entities[0].Contact)
	assert.True(t, entities[0].Contact.Primary.IsLocal)
	require.Len(t, entities[0].Contact.Secondary, 1)

	assert.Equal(t, model.KindBusiness, entities[1].Kind)
	assert.Empty(t, entities[1].Contact.Secondary)
}

func TestLoadTaxRoll_NoHeader(t *testing.T) {
	b := newBuilder()
	path := writeTaxRoll(t, "001-23,\"FARON, DOUGLAS\",456 OCEAN DR\n")

	entities, err := b.LoadTaxRoll(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entities, 1, "a data row in first position is not mistaken for a header")
}

func TestLoadTaxRoll_MissingFile(t *testing.T) {
	b := newBuilder()
	_, err := b.LoadTaxRoll(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestLoadTaxRoll_Cancelled(t *testing.T) {
	b := newBuilder()
	path := writeTaxRoll(t, "001-23,\"FARON, DOUGLAS\",456 OCEAN DR\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.LoadTaxRoll(ctx, path)
	assert.Error(t, err)
}

func writeDonorRoster(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Donors")
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "donors.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadDonorRoster(t *testing.T) {
	b := newBuilder()
	path := writeDonorRoster(t, [][]string{
		{"donor_id", "name", "address"},
		{"D-100", "FARON, DOUGLAS", "12 MAPLE AVE, YONKERS NY 10701"},
		{"D-101", "SMITH FAMILY TRUST", ""},
		{"", "NO ID", "1 SPRING ST"},
	})

	entities, err := b.LoadDonorRoster(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entities, 2, "the row without a donor id is skipped")

	assert.Equal(t, "donor_roster/donor/D-100", entities[0].Location.Key())
	require.NotNil(t, entities[0].Contact)
	assert.Nil(t, entities[0].Contact.Primary, "donor addresses are mailing addresses, never a property location")
	require.Len(t, entities[0].Contact.Secondary, 1)
	assert.Equal(t, "YONKERS", entities[0].Contact.Secondary[0].City.Value)

	assert.Equal(t, model.KindLegalConstruct, entities[1].Kind)
	assert.Nil(t, entities[1].Contact)
}

func TestLoadDonorRoster_MissingFile(t *testing.T) {
	b := newBuilder()
	_, err := b.LoadDonorRoster(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}
