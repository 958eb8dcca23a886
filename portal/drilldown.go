package portal

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/enpartner/tarifscout/models"
)

// drilldownCommissions opens the per-tariff commission disclosure on the
// live page and enriches the already-extracted records in place.
//
// Commission is supplementary data: a failed disclosure leaves the
// tariff's other fields intact, sets no commission and logs a warning.
// One stubborn tariff never costs the caller the rest of the batch.
func (p *Portal) drilldownCommissions(pg *rod.Page, records []models.TariffRecord) {
	var items rod.Elements
	for _, sel := range p.resolver.Candidates(FieldResultItem) {
		els, err := pg.Elements(sel)
		if err == nil && len(els) > 0 {
			items = els
			break
		}
	}
	if items == nil {
		slog.Warn("commission drill-down: result items no longer present")
		return
	}

	for ri := range records {
		rec := &records[ri]
		if rec.Index >= len(items) {
			slog.Warn("commission drill-down: item vanished", "index", rec.Index)
			continue
		}
		item := items[rec.Index]

		toggle, _, err := p.resolver.ResolveIn(item, FieldCommissionToggle)
		if err != nil {
			slog.Warn("commission drill-down: no disclosure control",
				"index", rec.Index, "tariff", rec.Tariff, "error", err)
			continue
		}
		if err := toggle.Click(proto.InputMouseButtonLeft, 1); err != nil {
			slog.Warn("commission drill-down: disclosure click failed",
				"index", rec.Index, "tariff", rec.Tariff, "error", err)
			continue
		}
		if err := sleepSettle(pg, p.waits.DrilldownDelay); err != nil {
			slog.Warn("commission drill-down interrupted", "error", err)
			return
		}

		rec.Commission = p.readScopedPrice(item, FieldCommission)
		rec.SpecialCommission = p.readScopedPrice(item, FieldSpecialBonus)
		rec.TotalCommission = p.readScopedPrice(item, FieldTotalCommission)

		if rec.Commission == nil && rec.TotalCommission == nil {
			slog.Warn("commission drill-down: panel opened but no figures found",
				"index", rec.Index, "tariff", rec.Tariff)
		}
	}
}

// readScopedPrice reads a price-like field within one result item,
// mapping absence or unparsable text to nil.
func (p *Portal) readScopedPrice(item *rod.Element, field Field) *float64 {
	el, _, err := p.resolver.ResolveIn(item, field)
	if err != nil {
		return nil
	}
	text, err := el.Text()
	if err != nil {
		return nil
	}
	return parseOptionalPrice(text)
}
