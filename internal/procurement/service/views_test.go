package service_test

import (
	"errors"
	"testing"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/service"
)

func registerFixture() []entity.Purchase {
	return []entity.Purchase{
		{
			ID: "2025-PF-001", PRNo: "2025-PR-001", DVNo: "2025-DV-001",
			Title: "Vehicle repair", Department: "MDRRMO", Status: entity.StatusCompleted,
			Supplier1:   entity.Supplier{Name: "ONGSKIE AUTO SUPPLY"},
			Items:       []entity.Item{{Number: 1, Name: "Oil", Total: 1800}, {Number: 2, Name: "Filter", Total: 500}},
			TotalAmount: 2300,
		},
		{ID: "2025-PF-002", PRNo: "2025-PR-002", Title: "Tents", Purpose: "Evacuation center", Status: entity.StatusPending, TotalAmount: 1000},
		{ID: "2025-PF-003", PRNo: "2025-PR-003", Title: "Radios", Status: entity.StatusApproved, TotalAmount: 10000},
	}
}

func TestRegisterReleasedOnly(t *testing.T) {
	v, err := service.Register(service.ViewDV, registerFixture())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	rows := v.([]service.DVRow)
	if len(rows) != 2 {
		t.Fatalf("expected approved and completed only, got %d rows", len(rows))
	}
	if rows[1].GrossAmount != 10000 || rows[1].NetAmount != 9400 {
		t.Fatalf("unexpected amounts %+v", rows[1])
	}
	if rows[1].Payee != "-" || rows[1].Explanation != "Radios" {
		t.Fatalf("expected placeholders, got %+v", rows[1])
	}

	v, _ = service.Register(service.ViewOBR, registerFixture())
	if obr := v.([]service.OBRRow); obr[0].AccountCode != service.DefaultAccountCode {
		t.Fatalf("unexpected account code %s", obr[0].AccountCode)
	}
}

func TestRegisterPARExpandsItems(t *testing.T) {
	v, err := service.Register(service.ViewPAR, registerFixture())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	rows := v.([]service.PARRow)
	if len(rows) != 2 {
		t.Fatalf("expected one row per item of the completed purchase, got %d", len(rows))
	}
	if rows[0].ID != "2025-PF-001-1" || rows[0].PARNo != "2025-PR-001-PAR" || rows[1].Cost != 500 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestRegisterRISAndPR(t *testing.T) {
	v, _ := service.Register(service.ViewRIS, registerFixture())
	ris := v.([]service.RISRow)
	if len(ris) != 3 || ris[1].RISNo != "2025-PR-002-RIS" || ris[1].Purpose != "Evacuation center" || ris[0].Purpose != "Vehicle repair" {
		t.Fatalf("unexpected RIS rows %+v", ris)
	}
	v, _ = service.Register(service.ViewPR, registerFixture())
	if pr := v.([]service.PRRow); len(pr) != 3 {
		t.Fatalf("expected every purchase in the PR register, got %d", len(pr))
	}
	v, _ = service.Register(service.ViewPO, nil)
	if po := v.([]service.PORow); po == nil || len(po) != 0 {
		t.Fatalf("expected an empty non-nil register, got %v", po)
	}
}

func TestRegisterUnknownView(t *testing.T) {
	if _, err := service.Register("ledger", nil); !errors.Is(err, service.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestNetOfWithholding(t *testing.T) {
	if got := service.NetOfWithholding(2650); got != 2491 {
		t.Fatalf("expected 2491, got %v", got)
	}
	if got := service.NetOfWithholding(0.1); got != 0.09 {
		t.Fatalf("expected 0.09, got %v", got)
	}
}
