package extract

import (
	"strings"
	"testing"

	"sjsage522/pricetracker/internal/profile"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestSelectPrice(t *testing.T) {
	testCases := []struct {
		name       string
		candidates []Candidate
		expected   float64
	}{
		{
			name: "high priority wins over larger normal",
			candidates: []Candidate{
				{Price: 999, Priority: PriorityNormal},
				{Price: 100, Priority: PriorityHigh},
			},
			expected: 100,
		},
		{
			name: "first high priority in order",
			candidates: []Candidate{
				{Price: 250, Priority: PriorityHigh},
				{Price: 100, Priority: PriorityHigh},
			},
			expected: 250,
		},
		{
			name: "majority among normal",
			candidates: []Candidate{
				{Price: 50, Priority: PriorityNormal},
				{Price: 50, Priority: PriorityNormal},
				{Price: 80, Priority: PriorityNormal},
			},
			expected: 50,
		},
		{
			name: "max when nothing repeats",
			candidates: []Candidate{
				{Price: 50, Priority: PriorityNormal},
				{Price: 80, Priority: PriorityNormal},
			},
			expected: 80,
		},
		{
			name: "frequency tie goes to first occurrence",
			candidates: []Candidate{
				{Price: 80, Priority: PriorityNormal},
				{Price: 50, Priority: PriorityNormal},
				{Price: 50, Priority: PriorityNormal},
				{Price: 80, Priority: PriorityNormal},
			},
			expected: 80,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SelectPrice(tc.candidates)
			assert.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSelectPriceEmpty(t *testing.T) {
	_, ok := SelectPrice(nil)
	assert.False(t, ok)
}

func TestCandidatesPreferPriceContainers(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="promo">Sepette 2.999,00 TL</div>
		<span class="price">1.299,90 TL</span>
		<span class="money">1.199,90 TL</span>
	</body></html>`)

	candidates := Candidates(doc)
	require.Len(t, candidates, 2)
	assert.Equal(t, PriorityHigh, candidates[0].Priority)
	assert.Equal(t, 1299.9, candidates[0].Price)
	assert.Equal(t, "span.price", candidates[0].CSSContext)
	assert.Equal(t, 1199.9, candidates[1].Price)
}

func TestCandidatesDropBlockedText(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="price">150 TL üzeri kargo bedava</div>
		<div class="price">Bu üründen 45 puan kazan</div>
		<div class="amount">349,90 TL</div>
	</body></html>`)

	candidates := Candidates(doc)
	require.Len(t, candidates, 1)
	assert.Equal(t, 349.9, candidates[0].Price)
}

func TestCandidatesDropOutOfRange(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<span class="price">0,50 TL</span>
		<span class="price">2.500.000,00 TL</span>
		<span class="price">74,99 TL</span>
	</body></html>`)

	candidates := Candidates(doc)
	require.Len(t, candidates, 1)
	assert.Equal(t, 74.99, candidates[0].Price)
}

func TestCandidatesExhaustiveSweep(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div id="buy"><b>449,00 TL</b></div>
		<p>Stok kodu 12</p>
	</body></html>`)

	candidates := Candidates(doc)
	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.Equal(t, PriorityNormal, c.Priority)
		assert.Equal(t, 449.0, c.Price)
	}

	got, ok := FindPrice(doc)
	require.True(t, ok)
	assert.Equal(t, 449.0, got)
}

func TestCandidatesSkipLongText(t *testing.T) {
	long := strings.Repeat("açıklama ", 30) + "99,90 TL"
	doc := mustDoc(t, `<html><body><div class="price">`+long+`</div></body></html>`)

	for _, c := range Candidates(doc) {
		assert.NotEqual(t, PriorityHigh, c.Priority)
	}
}

func TestFindPriceNoCandidates(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>Sepete ekle</p></body></html>`)

	_, ok := FindPrice(doc)
	assert.False(t, ok)
}

func TestExtractProfileOrder(t *testing.T) {
	html := `<html><body>
		<div data-product-price="1.499,00"></div>
		<span class="product-price">1.399,00 TL</span>
		<input type="hidden" id="price-vat" value="1.299,00">
		<span class="old-price">1.999,00 TL</span>
	</body></html>`

	testCases := []struct {
		name    string
		profile profile.SiteProfile
		price   float64
		method  string
	}{
		{
			name:    "data attribute",
			profile: profile.SiteProfile{DataAttributes: []string{"data-product-price"}, Primary: []string{".product-price"}},
			price:   1499,
			method:  "data-attribute: data-product-price",
		},
		{
			name:    "primary selector",
			profile: profile.SiteProfile{DataAttributes: []string{"data-missing"}, Primary: []string{".nothing", ".product-price"}},
			price:   1399,
			method:  "primary-selector: .product-price",
		},
		{
			name:    "hidden input",
			profile: profile.SiteProfile{Primary: []string{".nothing"}, HiddenInputs: []string{"#price-vat"}},
			price:   1299,
			method:  "hidden-input: #price-vat",
		},
		{
			name:    "alternative selector",
			profile: profile.SiteProfile{Primary: []string{".nothing"}, Alternative: []string{".old-price"}},
			price:   1999,
			method:  "alternative-selector: .old-price",
		},
		{
			name:    "heuristic fallback",
			profile: profile.SiteProfile{Primary: []string{".nothing"}},
			price:   1399,
			method:  MethodSmartFinder,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.profile
			got, method, ok := Extract(mustDoc(t, html), &p)
			require.True(t, ok)
			assert.Equal(t, tc.price, got)
			assert.Equal(t, tc.method, method)
		})
	}
}

func TestExtractSkipsUnparseableRule(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<span class="product-price">Tükendi</span>
		<span class="spanFiyat">89,90 TL</span>
	</body></html>`)

	p := &profile.SiteProfile{Primary: []string{".product-price", ".spanFiyat"}}
	got, method, ok := Extract(doc, p)
	require.True(t, ok)
	assert.Equal(t, 89.9, got)
	assert.Equal(t, "primary-selector: .spanFiyat", method)
}

func TestExtractWithoutProfile(t *testing.T) {
	registry := profile.Default()
	p, found := registry.Lookup("https://unknown-shop.io/p/1")
	require.False(t, found)

	doc := mustDoc(t, `<html><body><div class="final-price">2.349,00 TL</div></body></html>`)
	got, method, ok := Extract(doc, p)
	require.True(t, ok)
	assert.Equal(t, 2349.0, got)
	assert.Equal(t, MethodSmartFinder, method)
}

func TestExtractNothing(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>Merhaba</p></body></html>`)
	_, _, ok := Extract(doc, nil)
	assert.False(t, ok)
}

func TestIsNotFound(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		body     string
		expected bool
	}{
		{"title 404", "404 - Sayfa", "", true},
		{"title not found", "Page Not Found", "", true},
		{"title turkish", "Ürün Bulunamadı", "", true},
		{"unreachable phrase in body", "Mağaza", "Aradığınız içeriğe şu an ulaşılamıyor.", true},
		{"body product missing", "Mağaza", "Üzgünüz, ürün bulunamadı", true},
		{"body page missing", "Mağaza", "Sayfa bulunamadı", true},
		{"bare 404 in body", "Filament PLA", "Model 404 filament", false},
		{"clean page", "Filament PLA", "349,90 TL", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsNotFound(tc.title, tc.body))
		})
	}
}

func TestDocumentNotFound(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>404 Not Found</title></head>
		<body><span class="price">1.299,00 TL</span></body></html>`)
	assert.True(t, DocumentNotFound(doc))
}

func TestPageTitle(t *testing.T) {
	doc := mustDoc(t, `<html><head><title>  PLA Filament  </title></head><body><h1>Other</h1></body></html>`)
	assert.Equal(t, "PLA Filament", PageTitle(doc))

	doc = mustDoc(t, `<html><body><h1>First</h1><h1>Second</h1></body></html>`)
	assert.Equal(t, "First", PageTitle(doc))

	doc = mustDoc(t, `<html><body></body></html>`)
	assert.Equal(t, "", PageTitle(doc))
}
