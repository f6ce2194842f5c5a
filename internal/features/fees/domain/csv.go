package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	settings "postnet-delivery/internal/features/settings/domain"
)

// Header returns the expected CSV header row.
func Header() []string {
	header := []string{"Product ID", "Product Name"}
	for _, st := range settings.FeeServiceTypes() {
		header = append(header, st.Label())
	}
	return header
}

// WriteCSV writes the header followed by one row per record.
// Missing fees are written as empty cells.
func WriteCSV(w io.Writer, records []ProductFees) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}

	types := settings.FeeServiceTypes()
	for _, rec := range records {
		row := make([]string, 0, 2+len(types))
		row = append(row, strconv.FormatInt(rec.ProductID, 10), rec.ProductName)
		for _, st := range types {
			v, ok := rec.Fees[st]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV reads every row before returning. A header mismatch or any malformed
// row fails the whole file. Empty fee cells are left out of the record.
func ParseCSV(r io.Reader) ([]ProductFees, error) {
	expected := Header()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrHeaderMismatch
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !slices.Equal(header, expected) {
		return nil, ErrHeaderMismatch
	}

	types := settings.FeeServiceTypes()
	var records []ProductFees
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		if len(row) != len(expected) {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d", ErrMalformedRow, line, len(expected), len(row))
		}

		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: line %d: invalid product id %q", ErrMalformedRow, line, row[0])
		}

		rec := NewProductFees(id, row[1])
		for i, st := range types {
			cell := strings.TrimSpace(row[2+i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid %s fee %q", ErrMalformedRow, line, st.Label(), cell)
			}
			if v < 0 {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, ErrNegativeFee)
			}
			rec.Fees[st] = v
		}
		records = append(records, rec)
	}

	return records, nil
}
