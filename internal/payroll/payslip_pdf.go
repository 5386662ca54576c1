package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// RenderPayslipPDF lays out a single A4 payslip.
func RenderPayslipPDF(p Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %d", p.Period.MonthName, p.Period.Year), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Payslip - %s %d", p.Period.MonthName, p.Period.Year))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", p.Employee.Name, p.Employee.LoginID))
	pdf.Ln(6)
	if p.Employee.Department != nil {
		pdf.Cell(0, 7, "Department: "+*p.Employee.Department)
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, "Joining date: "+p.Employee.JoiningDate)
	pdf.Ln(10)

	section(pdf, "Attendance")
	row(pdf, "Working days", fmt.Sprint(p.Attendance.TotalWorkingDays))
	row(pdf, "Present", fmt.Sprint(p.Attendance.PresentDays))
	row(pdf, "Paid leave", fmt.Sprint(p.Attendance.PaidLeaveDays))
	row(pdf, "Sick leave", fmt.Sprint(p.Attendance.SickLeaveDays))
	row(pdf, "Unpaid leave", fmt.Sprint(p.Attendance.UnpaidLeaveDays))
	row(pdf, "Absent", fmt.Sprint(p.Attendance.AbsentDays))
	row(pdf, "Payable days", fmt.Sprint(p.Attendance.PayableDays))
	pdf.Ln(4)

	section(pdf, "Earnings")
	money(pdf, "Basic salary", p.Earnings.BasicSalary)
	money(pdf, "HRA", p.Earnings.HRA)
	money(pdf, "Standard allowance", p.Earnings.StandardAllowance)
	money(pdf, "Performance bonus", p.Earnings.PerformanceBonus)
	money(pdf, "LTA", p.Earnings.LTA)
	money(pdf, "Fixed allowance", p.Earnings.FixedAllowance)
	money(pdf, "Gross salary", p.Earnings.GrossSalary)
	pdf.Ln(4)

	section(pdf, "Deductions")
	money(pdf, "Provident fund", p.Deductions.PF)
	money(pdf, "Professional tax", p.Deductions.ProfessionalTax)
	money(pdf, "Loss of pay", p.Deductions.LossOfPay)
	money(pdf, "Total deductions", p.Deductions.TotalDeductions)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	money(pdf, "Net salary", p.NetSalary)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(70, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, value, "", 1, "R", false, 0, "")
}

func money(pdf *gofpdf.Fpdf, label string, v decimal.Decimal) {
	row(pdf, label, v.StringFixed(2))
}
