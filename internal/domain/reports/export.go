package reports

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	journalSheet = "Movements"

	// maxExportRows caps one workbook; larger journals are exported in
	// slices via the filter's offset.
	maxExportRows = 10000
)

var journalHeaders = []string{
	"Document", "Kind", "Date", "Warehouse", "Product", "Unit",
	"Quantity", "Unit price", "Total", "Counterparty", "Operator", "Note",
}

// ExportJournalXLSX renders the movement journal as an Excel workbook.
// The caller owns the file and should Close it after writing.
func (s *Service) ExportJournalXLSX(ctx context.Context, f JournalFilter) (*excelize.File, error) {
	if f.Limit <= 0 || f.Limit > maxExportRows {
		f.Limit = maxExportRows
	}

	rows, err := s.repo.GetJournal(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get journal: %w", err)
	}

	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", journalSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	for i, h := range journalHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		file.SetCellValue(journalSheet, cell, h)
	}

	for i, r := range rows {
		unitPrice := ""
		if r.UnitPrice != nil {
			unitPrice = r.UnitPrice.StringFixed(2)
		}
		counterparty := ""
		if r.CounterpartyName != nil {
			counterparty = *r.CounterpartyName
		}

		values := []any{
			r.DocumentNumber,
			string(r.Kind),
			r.OccurredAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%s %s", r.WarehouseCode, r.WarehouseName),
			fmt.Sprintf("%s %s", r.ProductCode, r.ProductName),
			r.Unit,
			r.Quantity,
			unitPrice,
			r.TotalAmount.StringFixed(2),
			counterparty,
			r.Operator,
			r.Note,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			file.SetCellValue(journalSheet, cell, v)
		}
	}

	file.SetColWidth(journalSheet, "A", "E", 22)
	file.SetColWidth(journalSheet, "F", "L", 14)

	return file, nil
}
