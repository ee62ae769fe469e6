package services

import (
	"context"
	"encoding/json"
	"fmt"
	"form-builder/apperr"
	"form-builder/types"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/slices"
)

const exportSheet = "Responses"

// ExportXLSX builds a workbook with one row per response. Columns are
// id, submitted_by, submitted_at followed by every answer key, sorted.
func (s *ResponseService) ExportXLSX(ctx context.Context, formID types.SnowflakeID) (*excelize.File, error) {
	responses, err := s.List(ctx, formID)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, len(responses))
	keySet := map[string]bool{}
	for i, resp := range responses {
		answers := map[string]interface{}{}
		if err := json.Unmarshal(resp.Answers, &answers); err != nil {
			return nil, apperr.Internal("response.export", fmt.Errorf("response %s: %w", resp.ID, err))
		}
		for k := range answers {
			keySet[k] = true
		}
		rows[i] = answers
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, apperr.Internal("response.export", err)
	}

	header := []interface{}{"id", "submitted_by", "submitted_at"}
	for _, k := range keys {
		header = append(header, k)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		f.Close()
		return nil, apperr.Internal("response.export", err)
	}

	for i, resp := range responses {
		row := []interface{}{resp.ID.String(), resp.SubmittedBy, resp.SubmittedAt.UTC().Format(time.RFC3339)}
		for _, k := range keys {
			row = append(row, cellValue(rows[i][k]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, apperr.Internal("response.export", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, apperr.Internal("response.export", err)
		}
	}
	return f, nil
}

// cellValue flattens nested answers (checkbox lists, objects) to JSON text.
func cellValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return ""
	case string, float64, bool:
		return t
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}
