package portal

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/enpartner/tarifscout/models"
)

// extractTariffs parses the rendered result list into normalized records.
//
// Each item is an independent unit: a malformed item is logged and
// skipped, never fatal for the batch — a partial offer list is more useful
// to the caller than none. Extraction is bounded to max items to cap cost
// on addresses with very long lists.
func (p *Portal) extractTariffs(html string, max int) []models.TariffRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Error("result page HTML did not parse", "error", err)
		return nil
	}

	var items *goquery.Selection
	for _, sel := range p.resolver.Candidates(FieldResultItem) {
		if s := doc.Find(sel); s.Length() > 0 {
			items = s
			break
		}
	}
	if items == nil {
		slog.Warn("result container present but no result items matched")
		return nil
	}

	records := make([]models.TariffRecord, 0, items.Length())
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= max {
			slog.Debug("result list truncated", "max", max)
			return false
		}
		rec, err := p.parseResultItem(i, item)
		if err != nil {
			slog.Warn("skipping malformed result item", "index", i, "error", err)
			return true
		}
		records = append(records, rec)
		return true
	})
	return records
}

// parseResultItem normalizes one rendered offer. Provider, tariff name and
// both headline prices are required; everything else degrades to an
// absent value when the element is missing or unparsable.
func (p *Portal) parseResultItem(index int, item *goquery.Selection) (models.TariffRecord, error) {
	text := func(field Field) string {
		if m := p.resolver.Find(item, field); m != nil {
			return strings.TrimSpace(m.Text())
		}
		return ""
	}

	provider := text(FieldProvider)
	if provider == "" {
		return models.TariffRecord{}, fmt.Errorf("item has no provider name")
	}
	tariff := text(FieldTariffName)
	if tariff == "" {
		return models.TariffRecord{}, fmt.Errorf("item has no tariff name")
	}

	monthly, err := ParsePrice(text(FieldMonthlyPrice))
	if err != nil {
		return models.TariffRecord{}, fmt.Errorf("monthly price: %w", err)
	}
	annual, err := ParsePrice(text(FieldAnnualPrice))
	if err != nil {
		return models.TariffRecord{}, fmt.Errorf("annual price: %w", err)
	}

	rec := models.TariffRecord{
		Provider:           provider,
		Tariff:             tariff,
		MonthlyPrice:       monthly,
		AnnualPrice:        annual,
		BasePrice:          parseOptionalPrice(text(FieldBasePrice)),
		UsagePrice:         parseOptionalPrice(text(FieldUsagePrice)),
		ContractTerm:       text(FieldContractTerm),
		CancellationNotice: text(FieldCancellation),
		PriceGuarantee:     text(FieldGuarantee),
		Index:              index,
	}

	// The tariff id sits either on the item itself or on a child node.
	if id, ok := item.Attr("data-tariff-id"); ok {
		rec.TariffID = id
	} else if m := p.resolver.Find(item, FieldTariffID); m != nil {
		rec.TariffID, _ = m.Attr("data-tariff-id")
	}

	return rec, nil
}
