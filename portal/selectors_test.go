package portal

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

func TestSelectorTableParses(t *testing.T) {
	for field, candidates := range defaultSelectors {
		if len(candidates) == 0 {
			t.Errorf("field %q has no candidates", field)
			continue
		}
		for _, sel := range candidates {
			if _, err := cascadia.ParseGroup(sel); err != nil {
				t.Errorf("field %q: selector %q does not parse: %v", field, sel, err)
			}
		}
	}
}

func TestNewResolver(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if got := r.Candidates(FieldZip); len(got) == 0 {
		t.Error("Candidates(FieldZip) is empty")
	}
	if got := r.Candidates(Field("no_such_field")); got != nil {
		t.Errorf("Candidates for unknown field = %v, want nil", got)
	}
}

func TestResolverFindFallbackOrder(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	// Both the primary and the fallback class are present; the primary
	// must win.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div>
			<span class="anbieter">Primär GmbH</span>
			<span class="provider">Fallback AG</span>
		</div>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	m := r.Find(doc.Selection, FieldProvider)
	if m == nil {
		t.Fatal("Find(FieldProvider) = nil")
	}
	if got := strings.TrimSpace(m.Text()); got != "Primär GmbH" {
		t.Errorf("Find picked %q, want the primary candidate", got)
	}
}

func TestResolverFindMiss(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div></div>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if m := r.Find(doc.Selection, FieldProvider); m != nil {
		t.Errorf("Find on empty document = %v, want nil", m)
	}
}

func TestFieldNotFoundError(t *testing.T) {
	err := &FieldNotFoundError{Field: FieldCity}
	if !strings.Contains(err.Error(), "city") {
		t.Errorf("error text %q does not name the field", err.Error())
	}
}
