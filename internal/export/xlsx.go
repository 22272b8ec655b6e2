// Package export flattens extracted policy documents into an XLSX summary.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"policyscan/internal/policy"
)

// Row is one extracted document plus its validation outcome.
type Row struct {
	Source        string
	Doc           policy.Document
	IsValid       bool
	MissingFields int
}

// Service produces XLSX bytes for extraction summaries.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// SummaryXLSX returns an XLSX workbook (as bytes) with one row per document.
func (s *Service) SummaryXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Policies"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Source File",
		"Insurer",
		"Policy Number",
		"Policyholder",
		"Vehicle",
		"Registration Mark",
		"Period Start",
		"Period End",
		"Premium",
		"Total Payable",
		"Schema Valid",
		"Missing Fields",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Source)
		write(2, pathString(r.Doc, "insurerAndPolicyDetails.insurerName"))
		write(3, pathString(r.Doc, "insurerAndPolicyDetails.policyNumber"))
		write(4, pathString(r.Doc, "policyholder.name"))
		write(5, pathString(r.Doc, "vehicle.makeAndModel"))
		write(6, pathString(r.Doc, "vehicle.registrationMark"))
		write(7, pathString(r.Doc, "insurerAndPolicyDetails.periodOfInsurance.start"))
		write(8, pathString(r.Doc, "insurerAndPolicyDetails.periodOfInsurance.end"))
		write(9, pathString(r.Doc, "premiumAndDiscounts.premiumAmount"))
		write(10, pathString(r.Doc, "premiumAndDiscounts.totalPayable"))
		write(11, r.IsValid)
		write(12, r.MissingFields)

		rowIdx++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 36) // file
	_ = f.SetColWidth(sheet, "B", "B", 28) // insurer
	_ = f.SetColWidth(sheet, "C", "D", 22) // policy no / holder
	_ = f.SetColWidth(sheet, "E", "F", 20) // vehicle
	_ = f.SetColWidth(sheet, "G", "J", 14) // dates/amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func pathString(doc policy.Document, path string) string {
	v, ok := doc.GetPath(path)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
