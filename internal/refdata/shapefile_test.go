package refdata

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoadsShapefile(t *testing.T, names []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roads.shp")

	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("FULLNAME", 50)})

	for i, name := range names {
		w.Write(&shp.PolyLine{
			Box:      shp.Box{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1},
			NumParts: 1, NumPoints: 2,
			Parts:  []int32{0},
			Points: []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
		})
		w.WriteAttribute(i, 0, name)
	}
	w.Close()
	return path
}

func TestStreetsFromShapefile(t *testing.T) {
	path := writeRoadsShapefile(t, []string{"Ocean Ave", "Corn Neck Rd", "ocean ave", ""})

	streets, err := StreetsFromShapefile(path, "FULLNAME")
	require.NoError(t, err)
	// Names are uppercased and deduplicated; unnamed records are skipped.
	assert.ElementsMatch(t, []string{"OCEAN AVE", "CORN NECK RD"}, streets)
}

func TestStreetsFromShapefile_DefaultNameField(t *testing.T) {
	path := writeRoadsShapefile(t, []string{"Spring St"})

	streets, err := StreetsFromShapefile(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"SPRING ST"}, streets)
}

func TestStreetsFromShapefile_MissingField(t *testing.T) {
	path := writeRoadsShapefile(t, []string{"Spring St"})

	_, err := StreetsFromShapefile(path, "ROADNAME")
	assert.Error(t, err)
}

func TestStreetsFromShapefile_MissingFile(t *testing.T) {
	_, err := StreetsFromShapefile(filepath.Join(t.TempDir(), "absent.shp"), "FULLNAME")
	assert.Error(t, err)
}
