package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/accident-risk/internal/model"
)

// DecodeCSV reads incidents from a CSV stream whose first row is the header.
func DecodeCSV(ctx context.Context, r io.Reader) ([]model.Incident, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	rawHeader, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, eris.New("csv: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	header, err := canonicalHeader(rawHeader)
	if err != nil {
		return nil, err
	}
	// csvutil rejects empty header names, so unknown columns get placeholders.
	for i, h := range header {
		if h == "" {
			header[i] = "_unused_" + strconv.Itoa(i)
		}
	}

	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, eris.Wrap(err, "csv: init decoder")
	}

	var incidents []model.Incident
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		var raw rawIncident
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: decode row %d", len(incidents)+2)
		}
		incidents = append(incidents, raw.toIncident(false))
	}

	return incidents, nil
}
