package bulkupload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gemlab-backend/internal/application/certificates"
)

// MaxRows caps the number of data rows accepted per file.
const MaxRows = 1000

var (
	ErrEmptyFile    = errors.New("CSV file is empty")
	ErrTooManyRows  = fmt.Errorf("CSV file exceeds %d rows", MaxRows)
	ErrMissingCols  = errors.New("CSV header is missing required columns")
	errUnknownField = errors.New("unknown column")
)

// requiredColumns must all appear in the header.
var requiredColumns = []string{"reference_number", "carat_weight", "color_grade", "clarity_grade", "cut_grade"}

// RowError reports a single failed row; row numbers count data rows from 1
// (the header is row 0).
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Report summarizes an import. Rows fail independently; a duplicate or
// malformed row never aborts the rest of the file.
type Report struct {
	Created int        `json:"created"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

// Service imports certificates from CSV through the certificate store, so
// every row goes through the same validation and uniqueness checks as a
// single create.
type Service struct {
	Store *certificates.Service
}

// Import reads CSV from r and creates one certificate per data row.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, req := range requiredColumns {
		if !contains(cols, req) {
			return nil, fmt.Errorf("%w: %s", ErrMissingCols, req)
		}
	}

	// Buffer the data rows before touching the store so an oversized file
	// is rejected whole instead of importing the first MaxRows rows.
	type rawRow struct {
		record []string
		err    error
	}
	var rows []rawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rows = append(rows, rawRow{record: record, err: err})
		if len(rows) > MaxRows {
			return nil, ErrTooManyRows
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	report := &Report{Errors: []RowError{}}
	for i, raw := range rows {
		row := i + 1
		if raw.err != nil {
			report.Failed++
			report.Errors = append(report.Errors, RowError{Row: row, Message: "malformed CSV row"})
			continue
		}

		input, err := rowToInput(cols, raw.record)
		if err == nil {
			_, err = s.Store.Create(ctx, *input)
		}
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, RowError{Row: row, Message: rowMessage(err)})
			continue
		}
		report.Created++
	}

	return report, nil
}

func rowToInput(cols, record []string) (*certificates.CreateInput, error) {
	if len(record) != len(cols) {
		return nil, errors.New("column count does not match header")
	}
	in := &certificates.CreateInput{}
	for i, col := range cols {
		value := strings.TrimSpace(record[i])
		if value == "" {
			continue
		}
		if err := setField(in, col, value); err != nil && err != errUnknownField {
			return nil, err
		}
	}
	return in, nil
}

func setField(in *certificates.CreateInput, col, value string) error {
	switch col {
	case "reference_number":
		in.ReferenceNumber = value
	case "gem_type":
		in.GemType = value
	case "shape":
		in.Shape = value
	case "dimensions":
		in.Dimensions = value
	case "carat_weight":
		in.CaratWeight = value
	case "color_grade":
		in.ColorGrade = value
	case "clarity_grade":
		in.ClarityGrade = value
	case "cut_grade":
		in.CutGrade = value
	case "polish":
		in.Polish = value
	case "symmetry":
		in.Symmetry = value
	case "fluorescence":
		in.Fluorescence = value
	case "treatment":
		in.Treatment = value
	case "origin":
		in.Origin = value
	case "table_percentage":
		in.TablePercentage = value
	case "depth_percentage":
		in.DepthPercentage = value
	case "crown_angle":
		in.CrownAngle = value
	case "pavilion_angle":
		in.PavilionAngle = value
	case "inscription":
		in.Inscription = value
	case "comments":
		in.Comments = value
	case "examined_by":
		in.ExaminedBy = value
	case "approved_by":
		in.ApprovedBy = value
	case "lab_location":
		in.LabLocation = value
	default:
		// Unknown columns are ignored so exported spreadsheets with extra
		// columns still import.
		return errUnknownField
	}
	return nil
}

func rowMessage(err error) string {
	if errors.Is(err, certificates.ErrDuplicateReference) {
		return certificates.ErrDuplicateReference.Error()
	}
	if ve, ok := certificates.AsValidationError(err); ok {
		return ve.Error()
	}
	return err.Error()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
