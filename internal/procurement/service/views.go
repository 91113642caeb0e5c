package service

import (
	"errors"
	"fmt"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
)

// ErrUnknownView is returned for a register name that has no projection.
var ErrUnknownView = errors.New("unknown register view")

// Register views.
const (
	ViewPR       = "pr"
	ViewPO       = "po"
	ViewOBR      = "obr"
	ViewDV       = "dv"
	ViewCanvass  = "canvass"
	ViewAbstract = "abstract"
	ViewAIR      = "air"
	ViewPAR      = "par"
	ViewRIS      = "ris"
)

// DefaultAccountCode is printed on obligation requests.
const DefaultAccountCode = "5-02-05-010"

const blank = "-"

type PRRow struct {
	ID          string  `json:"id"`
	PRNo        string  `json:"prNo"`
	Title       string  `json:"title"`
	Department  string  `json:"department"`
	Date        string  `json:"date"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

type PORow struct {
	ID          string  `json:"id"`
	PONo        string  `json:"poNo"`
	PRNo        string  `json:"prNo"`
	Supplier    string  `json:"supplier"`
	Date        string  `json:"date"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

type OBRRow struct {
	ID          string  `json:"id"`
	OBRNo       string  `json:"obrNo"`
	Payee       string  `json:"payee"`
	Office      string  `json:"office"`
	AccountCode string  `json:"accountCode"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

// DVRow shows the gross amount and the amount net of the 5% and 1%
// withholding taxes.
type DVRow struct {
	ID          string  `json:"id"`
	DVNo        string  `json:"dvNo"`
	Payee       string  `json:"payee"`
	Explanation string  `json:"explanation"`
	GrossAmount float64 `json:"grossAmount"`
	NetAmount   float64 `json:"netAmount"`
	Status      string  `json:"status"`
}

type CanvassRow struct {
	ID        string `json:"id"`
	PRNo      string `json:"prNo"`
	Title     string `json:"title"`
	Supplier1 string `json:"supplier1"`
	Supplier2 string `json:"supplier2"`
	Supplier3 string `json:"supplier3"`
}

type AbstractRow struct {
	ID              string  `json:"id"`
	PRNo            string  `json:"prNo"`
	ProjectName     string  `json:"projectName"`
	WinningSupplier string  `json:"winningSupplier"`
	WinningAmount   float64 `json:"winningAmount"`
}

type AIRRow struct {
	ID            string `json:"id"`
	Supplier      string `json:"supplier"`
	InvoiceNo     string `json:"invoiceNo"`
	DateReceived  string `json:"dateReceived"`
	DateInspected string `json:"dateInspected"`
	Status        string `json:"status"`
}

// PARRow is one item of a completed purchase.
type PARRow struct {
	ID          string  `json:"id"`
	PurchaseID  string  `json:"purchaseId"`
	PARNo       string  `json:"parNo"`
	Description string  `json:"description"`
	PropertyNo  string  `json:"propertyNo"`
	Date        string  `json:"date"`
	Cost        float64 `json:"cost"`
}

type RISRow struct {
	ID       string `json:"id"`
	RISNo    string `json:"risNo"`
	Division string `json:"division"`
	Purpose  string `json:"purpose"`
	Date     string `json:"date"`
}

// Register projects purchases into the rows of one document register.
func Register(view string, purchases []entity.Purchase) (interface{}, error) {
	switch view {
	case ViewPR:
		rows := make([]PRRow, 0, len(purchases))
		for _, p := range purchases {
			rows = append(rows, PRRow{p.ID, p.PRNo, p.Title, p.Department, p.Date, p.TotalAmount, p.Status})
		}
		return rows, nil
	case ViewPO:
		rows := make([]PORow, 0)
		for _, p := range released(purchases) {
			rows = append(rows, PORow{p.ID, p.PONo, p.PRNo, orBlank(p.Supplier1.Name), p.Date, p.TotalAmount, p.Status})
		}
		return rows, nil
	case ViewOBR:
		rows := make([]OBRRow, 0)
		for _, p := range released(purchases) {
			rows = append(rows, OBRRow{p.ID, p.OBRNo, orBlank(p.Supplier1.Name), p.Department, DefaultAccountCode, p.TotalAmount, p.Status})
		}
		return rows, nil
	case ViewDV:
		rows := make([]DVRow, 0)
		for _, p := range released(purchases) {
			rows = append(rows, DVRow{
				ID:          p.ID,
				DVNo:        p.DVNo,
				Payee:       orBlank(p.Supplier1.Name),
				Explanation: purposeOrTitle(p),
				GrossAmount: p.TotalAmount,
				NetAmount:   NetOfWithholding(p.TotalAmount),
				Status:      p.Status,
			})
		}
		return rows, nil
	case ViewCanvass:
		rows := make([]CanvassRow, 0, len(purchases))
		for _, p := range purchases {
			rows = append(rows, CanvassRow{p.ID, p.PRNo, p.Title, orBlank(p.Supplier1.Name), orBlank(p.Supplier2.Name), orBlank(p.Supplier3.Name)})
		}
		return rows, nil
	case ViewAbstract:
		rows := make([]AbstractRow, 0, len(purchases))
		for _, p := range purchases {
			rows = append(rows, AbstractRow{p.ID, p.PRNo, p.Title, orBlank(p.Supplier1.Name), p.TotalAmount})
		}
		return rows, nil
	case ViewAIR:
		rows := make([]AIRRow, 0)
		for _, p := range released(purchases) {
			rows = append(rows, AIRRow{p.ID, orBlank(p.Supplier1.Name), blank, blank, blank, p.Status})
		}
		return rows, nil
	case ViewPAR:
		rows := make([]PARRow, 0)
		for _, p := range purchases {
			if p.Status != entity.StatusCompleted {
				continue
			}
			for _, it := range p.Items {
				rows = append(rows, PARRow{
					ID:          fmt.Sprintf("%s-%d", p.ID, it.Number),
					PurchaseID:  p.ID,
					PARNo:       p.PRNo + "-PAR",
					Description: it.Name,
					PropertyNo:  blank,
					Date:        p.Date,
					Cost:        it.Total,
				})
			}
		}
		return rows, nil
	case ViewRIS:
		rows := make([]RISRow, 0, len(purchases))
		for _, p := range purchases {
			rows = append(rows, RISRow{p.ID, p.PRNo + "-RIS", p.Department, purposeOrTitle(p), p.Date})
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
}

// NetOfWithholding deducts the 5% and 1% withholding taxes.
func NetOfWithholding(gross float64) float64 {
	return roundTo2(gross - gross*0.05 - gross*0.01)
}

// released keeps purchases past approval.
func released(purchases []entity.Purchase) []entity.Purchase {
	var out []entity.Purchase
	for _, p := range purchases {
		if p.Status == entity.StatusApproved || p.Status == entity.StatusCompleted {
			out = append(out, p)
		}
	}
	return out
}

func orBlank(s string) string {
	if s == "" {
		return blank
	}
	return s
}

func purposeOrTitle(p entity.Purchase) string {
	if p.Purpose != "" {
		return p.Purpose
	}
	return p.Title
}
