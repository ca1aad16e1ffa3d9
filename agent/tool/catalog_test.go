package tool

import (
	"testing"

	contractx "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Reservation-Dialogue/agent/state"
)

func toolNames(dc *statex.DialogueContext) map[string]bool {
	out := map[string]bool{}
	for _, info := range Catalog(dc) {
		out[info.Name] = true
	}
	return out
}

func TestCatalogHidesLookupWithoutPhone(t *testing.T) {
	t.Parallel()

	names := toolNames(&statex.DialogueContext{})
	if len(names) != 3 {
		t.Fatalf("expected 3 tools, got %v", names)
	}
	if names[string(contractx.ActionFind)] || names[string(contractx.ActionCancel)] {
		t.Fatalf("lookup tools exposed without a phone: %v", names)
	}
	if !names[string(contractx.ActionSearch)] || !names[string(contractx.ActionBook)] || !names[string(contractx.ActionUpdate)] {
		t.Fatalf("unexpected tools: %v", names)
	}
}

func TestCatalogExposesLookupWithValidPhone(t *testing.T) {
	t.Parallel()

	names := toolNames(&statex.DialogueContext{ExtractedPhone: "9876543210"})
	if len(names) != 5 {
		t.Fatalf("expected 5 tools, got %v", names)
	}

	names = toolNames(&statex.DialogueContext{ExtractedPhone: "98765"})
	if names[string(contractx.ActionFind)] {
		t.Fatal("short phone should not expose find_reservation")
	}
}

func TestCatalogNilContext(t *testing.T) {
	t.Parallel()

	if got := len(Catalog(nil)); got != 3 {
		t.Fatalf("Catalog(nil) len = %d, want 3", got)
	}
}

func TestInfosCarryRequiredParams(t *testing.T) {
	t.Parallel()

	for _, info := range Infos() {
		if info.ParamsOneOf == nil {
			t.Fatalf("tool %s has no params", info.Name)
		}
		if info.Desc == "" {
			t.Fatalf("tool %s has no description", info.Name)
		}
	}
}
