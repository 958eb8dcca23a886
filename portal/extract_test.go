package portal

import (
	"testing"
)

func testPortal(t *testing.T) *Portal {
	t.Helper()
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return &Portal{resolver: r}
}

const resultsFixture = `
<div class="tarif-results">
  <div class="tarif-result" data-tariff-id="T-100">
    <span class="anbieter">Stadtwerke Musterstadt</span>
    <span class="tarifname">Basis Strom</span>
    <span class="preis-monat">89,90 €</span>
    <span class="preis-jahr">1.078,80 €</span>
    <span class="grundpreis">12,50 €</span>
    <span class="arbeitspreis">32,4 ct/kWh</span>
    <span class="laufzeit">12 Monate</span>
    <span class="kuendigung">6 Wochen</span>
    <span class="preisgarantie">12 Monate</span>
  </div>
  <div class="tarif-result">
    <span class="anbieter">EnergieDirekt GmbH</span>
    <span class="tarifname">Direkt Flex</span>
    <span class="preis-monat">95,00 €</span>
    <span class="preis-jahr">1.140,00 €</span>
    <span data-tariff-id="T-200" class="details"></span>
  </div>
  <div class="tarif-result" data-tariff-id="T-broken">
    <span class="anbieter">Kaputt AG</span>
    <span class="tarifname">Defekt</span>
    <span class="preis-monat">auf Anfrage</span>
    <span class="preis-jahr">auf Anfrage</span>
  </div>
  <div class="tarif-result" data-tariff-id="T-300">
    <span class="anbieter">Ökostrom Nord</span>
    <span class="tarifname">Grün 24</span>
    <span class="preis-monat">102,30 €</span>
    <span class="preis-jahr">1.227,60 €</span>
  </div>
</div>
`

func TestExtractTariffs(t *testing.T) {
	p := testPortal(t)

	records := p.extractTariffs(resultsFixture, 20)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (malformed item skipped)", len(records))
	}

	first := records[0]
	if first.Provider != "Stadtwerke Musterstadt" || first.Tariff != "Basis Strom" {
		t.Errorf("first record identity = %q / %q", first.Provider, first.Tariff)
	}
	if first.MonthlyPrice != 89.90 || first.AnnualPrice != 1078.80 {
		t.Errorf("first record prices = %v / %v", first.MonthlyPrice, first.AnnualPrice)
	}
	if first.BasePrice == nil || *first.BasePrice != 12.50 {
		t.Errorf("first record base price = %v, want 12.50", first.BasePrice)
	}
	if first.UsagePrice == nil || *first.UsagePrice != 32.4 {
		t.Errorf("first record usage price = %v, want 32.4", first.UsagePrice)
	}
	if first.ContractTerm != "12 Monate" || first.CancellationNotice != "6 Wochen" {
		t.Errorf("first record terms = %q / %q", first.ContractTerm, first.CancellationNotice)
	}
	if first.TariffID != "T-100" {
		t.Errorf("first record tariff id = %q, want T-100", first.TariffID)
	}
	if first.Index != 0 {
		t.Errorf("first record index = %d, want 0", first.Index)
	}

	// Optional elements missing entirely stay absent, never zero.
	second := records[1]
	if second.BasePrice != nil || second.UsagePrice != nil {
		t.Errorf("second record optional prices = %v / %v, want nil", second.BasePrice, second.UsagePrice)
	}
	if second.TariffID != "T-200" {
		t.Errorf("second record tariff id = %q, want T-200 (child attribute)", second.TariffID)
	}

	// Records keep display order; the skipped item does not shift indices
	// of the items before it, and Index refers to the page position.
	third := records[2]
	if third.Provider != "Ökostrom Nord" {
		t.Errorf("third record provider = %q", third.Provider)
	}
	if third.Index != 3 {
		t.Errorf("third record index = %d, want 3 (page position, not slice position)", third.Index)
	}
}

func TestExtractTariffsBounded(t *testing.T) {
	p := testPortal(t)

	records := p.extractTariffs(resultsFixture, 2)
	if len(records) != 2 {
		t.Fatalf("got %d records with max=2, want 2", len(records))
	}
}

func TestExtractTariffsNoItems(t *testing.T) {
	p := testPortal(t)

	tests := []struct {
		name string
		html string
	}{
		{"empty document", ""},
		{"container without items", `<div class="tarif-results"></div>`},
		{"unrelated markup", `<div class="hero">Jetzt vergleichen!</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.extractTariffs(tt.html, 20); len(got) != 0 {
				t.Errorf("got %d records, want 0", len(got))
			}
		})
	}
}

func TestExtractTariffsFallbackClass(t *testing.T) {
	p := testPortal(t)

	// Older site revision used the anglicized class names.
	html := `
	<div class="tariff-results">
	  <div class="tariff-result" data-tariff-id="T-9">
	    <span class="provider">Altbau Energie</span>
	    <span class="tariff-name">Klassik</span>
	    <span class="price-month">77,70 €</span>
	    <span class="price-year">932,40 €</span>
	  </div>
	</div>`

	records := p.extractTariffs(html, 20)
	if len(records) != 1 {
		t.Fatalf("got %d records from fallback markup, want 1", len(records))
	}
	if records[0].Provider != "Altbau Energie" || records[0].TariffID != "T-9" {
		t.Errorf("fallback record = %+v", records[0])
	}
}
