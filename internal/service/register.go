package service

import (
	"fmt"

	"hub3-slips/internal/domain"

	"github.com/xuri/excelize/v2"
)

const registerSheet = "Uplatnice"

type registerColumn struct {
	Header string
	Width  float64
	Value  func(s domain.Slip) any
}

var registerColumns = []registerColumn{
	{Header: "ID kontakta", Width: 12, Value: func(s domain.Slip) any { return s.ContactID }},
	{Header: "Platitelj", Width: 28, Value: func(s domain.Slip) any { return s.ContactName }},
	{Header: "Poziv na broj", Width: 16, Value: func(s domain.Slip) any { return s.Reference }},
	{Header: "Opis plaćanja", Width: 36, Value: func(s domain.Slip) any { return s.Description }},
	{Header: "HUB-3 podaci", Width: 40, Value: func(s domain.Slip) any { return s.Payload }},
	{Header: "Greška", Width: 30, Value: func(s domain.Slip) any {
		if s.Err == nil {
			return ""
		}
		return s.Err.Error()
	}},
}

// barcodeColumn follows the data columns.
var barcodeColumn = len(registerColumns) + 1

const (
	barcodeRowHeight = 64
	barcodeScale     = 0.5
)

// writeRegister lays out one row per slip with its barcode embedded next
// to the data, and returns the encoded workbook.
func writeRegister(tmpl domain.PaymentTemplate, org domain.Organization, slips []domain.Slip) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), registerSheet); err != nil {
		return nil, err
	}

	_ = f.SetDocProps(&excelize.DocProperties{
		Creator:     org.Name,
		Title:       tmpl.Name,
		Description: fmt.Sprintf("%s, iznos %s", org.IBAN, tmpl.Amount.StringFixed(2)),
	})

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, err
	}

	headers := make([]string, 0, barcodeColumn)
	for _, col := range registerColumns {
		headers = append(headers, col.Header)
	}
	headers = append(headers, "Barkod")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(registerSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(registerSheet, "A1", lastHeader, header)

	for i, col := range registerColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(registerSheet, name, name, col.Width)
	}
	barcodeName, _ := excelize.ColumnNumberToName(barcodeColumn)
	_ = f.SetColWidth(registerSheet, barcodeName, barcodeName, 32)

	for i, slip := range slips {
		row := i + 2
		for colIdx, col := range registerColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			if err := f.SetCellValue(registerSheet, cell, col.Value(slip)); err != nil {
				return nil, err
			}
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(registerColumns), row)
		_ = f.SetCellStyle(registerSheet, first, last, wrap)

		if len(slip.PNG) == 0 {
			continue
		}
		_ = f.SetRowHeight(registerSheet, row, barcodeRowHeight)

		cell, _ := excelize.CoordinatesToCellName(barcodeColumn, row)
		if err := f.AddPictureFromBytes(registerSheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      slip.PNG,
			Format: &excelize.GraphicOptions{
				AltText: slip.Reference,
				ScaleX:  barcodeScale,
				ScaleY:  barcodeScale,
				OffsetX: 4,
				OffsetY: 4,
			},
		}); err != nil {
			return nil, fmt.Errorf("barcode for contact %d: %w", slip.ContactID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
