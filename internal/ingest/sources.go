package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/shoreham-data/reconcile-cli/internal/model"
)

// Tax-roll CSV column layout: parcel id, owner name, property address,
// then zero or more mailing-address columns. Address columns carry the
// source's embedded delimiter tokens.
const (
	taxColParcel  = 0
	taxColOwner   = 1
	taxColAddress = 2
	taxColMailing = 3
)

// Donor-roster XLSX column layout: donor id, name, mailing address.
const (
	donorColID      = 0
	donorColName    = 1
	donorColAddress = 2
)

// LoadTaxRoll streams the property-tax roll CSV and builds one entity per
// row. Malformed rows are logged and skipped; a row failure never aborts
// the batch.
func (b *Builder) LoadTaxRoll(ctx context.Context, path string) ([]*model.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open tax roll %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable mailing columns
	reader.LazyQuotes = true

	var entities []*model.Entity
	var skipped int
	first := true
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ingest: tax roll cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read tax roll row")
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[taxColParcel]), "parcel_id") {
				continue // header row
			}
		}

		e, buildErr := b.taxRowToEntity(record)
		if buildErr != nil {
			skipped++
			zap.L().Warn("ingest: skipped tax roll row", zap.Error(buildErr))
			continue
		}
		entities = append(entities, e)
	}

	zap.L().Info("ingest: tax roll loaded",
		zap.String("path", path),
		zap.Int("entities", len(entities)),
		zap.Int("skipped", skipped),
	)
	return entities, nil
}

func (b *Builder) taxRowToEntity(record []string) (*model.Entity, error) {
	if len(record) <= taxColAddress {
		return nil, eris.Errorf("ingest: tax roll row has %d columns, need at least %d", len(record), taxColAddress+1)
	}

	parcel := strings.TrimSpace(record[taxColParcel])
	if parcel == "" {
		return nil, eris.New("ingest: tax roll row has no parcel id")
	}

	var mailing []string
	for _, col := range record[taxColMailing:] {
		if strings.TrimSpace(col) != "" {
			mailing = append(mailing, col)
		}
	}

	loc := model.LocationIdentifier{
		Source: model.SourceTaxRoll,
		IDType: "parcel",
		ID:     parcel,
	}
	return b.Build(loc, record[taxColOwner], record[taxColAddress], mailing)
}

// LoadDonorRoster reads the donor/contact roster workbook and builds one
// entity per row. Donor addresses are mailing addresses, so they land in
// secondary; donors have no property location.
func (b *Builder) LoadDonorRoster(ctx context.Context, path string) ([]*model.Entity, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open donor roster %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: donor roster %s has no sheets", path)
	}
	sheet := f.Sheets[0]

	var entities []*model.Entity
	var skipped int
	for i, row := range sheet.Rows {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ingest: donor roster cancelled")
		}
		if i == 0 {
			continue // header row
		}

		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}

		e, buildErr := b.donorRowToEntity(cells)
		if buildErr != nil {
			skipped++
			zap.L().Warn("ingest: skipped donor row", zap.Int("row", i), zap.Error(buildErr))
			continue
		}
		entities = append(entities, e)
	}

	zap.L().Info("ingest: donor roster loaded",
		zap.String("path", path),
		zap.Int("entities", len(entities)),
		zap.Int("skipped", skipped),
	)
	return entities, nil
}

func (b *Builder) donorRowToEntity(cells []string) (*model.Entity, error) {
	if len(cells) <= donorColName {
		return nil, eris.Errorf("ingest: donor row has %d columns, need at least %d", len(cells), donorColName+1)
	}
	if cells[donorColID] == "" {
		return nil, eris.New("ingest: donor row has no id")
	}

	var mailing []string
	if len(cells) > donorColAddress && cells[donorColAddress] != "" {
		mailing = append(mailing, cells[donorColAddress])
	}

	loc := model.LocationIdentifier{
		Source: model.SourceDonorRoster,
		IDType: "donor",
		ID:     cells[donorColID],
	}
	return b.Build(loc, cells[donorColName], "", mailing)
}
