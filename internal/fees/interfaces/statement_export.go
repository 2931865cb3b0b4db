package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	roster "clubledger/internal/roster/domain"
	stats "clubledger/internal/stats/domain"
)

// BuildMonthlyStatementPDF renders a minimal PDF for a monthly statement.
func BuildMonthlyStatementPDF(aggregate *stats.MonthlyAggregate, matches []*roster.Match, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Monthly Club Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Month: %04d-%02d", aggregate.Year, int(aggregate.Month)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Games: %d (W%d D%d L%d)", aggregate.GamesPlayed, aggregate.Wins, aggregate.Draws, aggregate.Losses))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Goals: %d - %d", aggregate.GoalsFor, aggregate.GoalsAgainst))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", aggregate.ComputedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Field Fees (%s): %.2f", currency, aggregate.FieldFeeTotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Water Fees (%s): %.2f", currency, aggregate.WaterFeeTotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Collected Fees (%s): %.2f", currency, aggregate.FinalFeeTotal))
	pdf.Ln(8)

	// Matches table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Opponent", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Score", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Field + Water", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Collected", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, match := range matches {
		if match == nil {
			continue
		}
		pdf.CellFormat(30, 6, match.PlayedAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, match.Opponent, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d-%d", match.GoalsFor, match.GoalsAgainst), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", match.FieldFeeTotal+match.WaterFeeTotal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", match.TotalFinalFees), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildMonthlyStatementXLSX renders a minimal XLSX for a monthly statement.
func BuildMonthlyStatementXLSX(aggregate *stats.MonthlyAggregate, matches []*roster.Match, currency string) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	matchesSheet := "matches"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(matchesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Monthly Club Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Month")
	_ = f.SetCellValue(summarySheet, "B3", fmt.Sprintf("%04d-%02d", aggregate.Year, int(aggregate.Month)))
	_ = f.SetCellValue(summarySheet, "A4", "Games Played")
	_ = f.SetCellValue(summarySheet, "B4", aggregate.GamesPlayed)
	_ = f.SetCellValue(summarySheet, "A5", "Wins / Draws / Losses")
	_ = f.SetCellValue(summarySheet, "B5", fmt.Sprintf("%d / %d / %d", aggregate.Wins, aggregate.Draws, aggregate.Losses))
	_ = f.SetCellValue(summarySheet, "A6", "Goals For / Against")
	_ = f.SetCellValue(summarySheet, "B6", fmt.Sprintf("%d / %d", aggregate.GoalsFor, aggregate.GoalsAgainst))
	_ = f.SetCellValue(summarySheet, "A7", "Field Fee Total")
	_ = f.SetCellValue(summarySheet, "B7", aggregate.FieldFeeTotal)
	_ = f.SetCellValue(summarySheet, "A8", "Water Fee Total")
	_ = f.SetCellValue(summarySheet, "B8", aggregate.WaterFeeTotal)
	_ = f.SetCellValue(summarySheet, "A9", "Collected Fee Total")
	_ = f.SetCellValue(summarySheet, "B9", aggregate.FinalFeeTotal)
	_ = f.SetCellValue(summarySheet, "A10", "Currency")
	_ = f.SetCellValue(summarySheet, "B10", currency)

	_ = f.SetCellValue(matchesSheet, "A1", "Date")
	_ = f.SetCellValue(matchesSheet, "B1", "Opponent")
	_ = f.SetCellValue(matchesSheet, "C1", "Goals For")
	_ = f.SetCellValue(matchesSheet, "D1", "Goals Against")
	_ = f.SetCellValue(matchesSheet, "E1", "Field Fee")
	_ = f.SetCellValue(matchesSheet, "F1", "Water Fee")
	_ = f.SetCellValue(matchesSheet, "G1", "Collected")
	row := 2
	for _, match := range matches {
		if match == nil {
			continue
		}
		_ = f.SetCellValue(matchesSheet, fmt.Sprintf("A%d", row), match.PlayedAt.Format("2006-01-02"))
		_ = f.SetCellValue(matchesSheet, fmt.Sprintf("B%d", row), match.Opponent)
		_ = f.SetCellValue(matchesSheet, fmt.Sprintf("C%d", row), match.GoalsFor)
		_ = f.SetCellValue(matchesSheet, fmt.Sprintf("D%d", row), match.GoalsAgainst)
		_ = f.SetCellValue(matchesSheet, fmt.Sprintf("E%d", row), match.FieldFeeTotal)
		_ = f.SetCellValue(matchesSheet, fmt.Sprintf("F%d", row), match.WaterFeeTotal)
		_ = f.SetCellValue(matchesSheet, fmt.Sprintf("G%d", row), match.TotalFinalFees)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
