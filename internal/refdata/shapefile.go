package refdata

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// StreetsFromShapefile extracts distinct street names from a TIGER/Line
// roads shapefile. The nameField attribute (FULLNAME for TIGER edges)
// supplies the street name; records with an empty name are skipped.
func StreetsFromShapefile(shpPath, nameField string) ([]string, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	if nameField == "" {
		nameField = "FULLNAME"
	}

	fields := reader.Fields()
	nameIdx := -1
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("refdata: shapefile has no %s field", nameField)
	}

	seen := make(map[string]struct{})
	var streets []string
	var skipped int

	for reader.Next() {
		val := strings.TrimRight(reader.Attribute(nameIdx), "\x00")
		val = strings.ToUpper(strings.TrimSpace(val))
		if val == "" {
			skipped++
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		streets = append(streets, val)
	}

	if skipped > 0 {
		zap.L().Debug("refdata: skipped unnamed road records",
			zap.String("shapefile", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return streets, nil
}
