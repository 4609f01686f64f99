package transfers

import (
	"testing"

	"github.com/dvloznov/applicant-screening/internal/domain"
)

func groupedEqual(a, b []domain.GroupedTransfer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Country != b[i].Country || a[i].Period != b[i].Period ||
			a[i].Source != b[i].Source || !a[i].Amount.Equal(b[i].Amount) {
			return false
		}
	}
	return true
}

func TestGroupTransfers(t *testing.T) {
	cleaned := []domain.Transfer{
		{Country: "USA", Period: 1, Amount: dec(t, "100"), Source: "A"},
		{Country: "USA", Period: 1, Amount: dec(t, "50"), Source: "B"},
		{Country: "GE", Period: 2, Amount: dec(t, "200"), Source: "M"},
		{Country: "USA", Period: 2, Amount: dec(t, "75"), Source: "A"},
		{Country: "GE", Period: 1, Amount: dec(t, "120"), Source: "B"},
	}

	want := []domain.GroupedTransfer{
		{Country: "GE", Period: 1, Amount: dec(t, "120"), Source: "B"},
		{Country: "GE", Period: 2, Amount: dec(t, "200"), Source: "M"},
		{Country: "USA", Period: 1, Amount: dec(t, "150"), Source: "A/B"},
		{Country: "USA", Period: 2, Amount: dec(t, "75"), Source: "A"},
	}

	got := GroupTransfers(cleaned)
	if !groupedEqual(got, want) {
		t.Errorf("GroupTransfers() = %+v, want %+v", got, want)
	}
}

func TestGroupTransfers_SourcesCollapseAndSort(t *testing.T) {
	cleaned := []domain.Transfer{
		{Country: "GE", Period: 1, Amount: dec(t, "10"), Source: "Z"},
		{Country: "GE", Period: 1, Amount: dec(t, "20"), Source: "A"},
		{Country: "GE", Period: 1, Amount: dec(t, "30"), Source: "Z"},
	}

	got := GroupTransfers(cleaned)
	if len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	if got[0].Source != "A/Z" {
		t.Errorf("Source = %q, want A/Z", got[0].Source)
	}
	if !got[0].Amount.Equal(dec(t, "60")) {
		t.Errorf("Amount = %s, want 60", got[0].Amount)
	}
}

func TestGroupTransfers_Empty(t *testing.T) {
	got := GroupTransfers(nil)
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no groups, got %+v", got)
	}
}
