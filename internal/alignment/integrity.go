package alignment

import "defi-portfolio-lab/internal/domain"

// IssueCategory classifies a data-quality anomaly found during alignment.
type IssueCategory string

// Issue categories.
const (
	CategoryMissingData    IssueCategory = "missing_data"
	CategoryLateStart      IssueCategory = "late_start"
	CategoryBadPrice       IssueCategory = "bad_price"
	CategoryDuplicateDates IssueCategory = "duplicate_dates"
	CategoryOutOfOrder     IssueCategory = "out_of_order"
	CategoryExcludedAsset  IssueCategory = "excluded_asset"
)

// categoryPenalties are the fixed score deductions, applied once per
// distinct category regardless of how many occurrences were found. The
// values are configuration, not hidden behavior: more categories always
// means a lower (never higher) score.
var categoryPenalties = map[IssueCategory]int{
	CategoryMissingData:    10,
	CategoryLateStart:      10,
	CategoryBadPrice:       10,
	CategoryDuplicateDates: 5,
	CategoryOutOfOrder:     5,
	CategoryExcludedAsset:  25,
}

// reportBuilder accumulates issues in discovery order and derives the
// 0-100 integrity score.
type reportBuilder struct {
	categories map[IssueCategory]struct{}
	issues     []string
}

func newReportBuilder() *reportBuilder {
	return &reportBuilder{categories: make(map[IssueCategory]struct{})}
}

func (b *reportBuilder) add(cat IssueCategory, msg string) {
	b.categories[cat] = struct{}{}
	b.issues = append(b.issues, msg)
}

// report finalizes the integrity report. Issues keep discovery order so
// repeated runs over the same input produce identical output.
func (b *reportBuilder) report() *domain.IntegrityReport {
	score := 100
	for cat := range b.categories {
		score -= categoryPenalties[cat]
	}
	if score < 0 {
		score = 0
	}

	issues := b.issues
	if issues == nil {
		issues = []string{}
	}
	return &domain.IntegrityReport{Score: score, Issues: issues}
}
