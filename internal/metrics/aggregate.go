package metrics

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/AngelCh415/spark-report/internal/attribution"
	"github.com/AngelCh415/spark-report/internal/format"
	"github.com/AngelCh415/spark-report/internal/models"
)

// DefaultLeadSubmissionType is the result type counted separately as lead submissions.
const DefaultLeadSubmissionType = "Lead Submission (BB24)"

const (
	topN          = 10
	phaseLabelMix = "Mixed"
	unknownName   = "Unknown"
)

var leadType = regexp.MustCompile(`(?i)lead`)

type options struct {
	leadSubmissionType string
	syntheses          []attribution.Synthesis
}

type Option func(*options)

func WithLeadSubmissionType(t string) Option {
	return func(o *options) {
		if strings.TrimSpace(t) != "" {
			o.leadSubmissionType = strings.TrimSpace(t)
		}
	}
}

// WithSyntheses replaces the catalog exception list.
func WithSyntheses(s []attribution.Synthesis) Option {
	return func(o *options) {
		if len(s) > 0 {
			o.syntheses = s
		}
	}
}

func newOptions(opts []Option) options {
	o := options{leadSubmissionType: DefaultLeadSubmissionType, syntheses: attribution.DefaultSyntheses}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

type attributedRow struct {
	models.AdRow
	models.Classification
}

// Result is the outcome of one aggregation run.
type Result struct {
	Schools []models.SchoolAggregate
	Catalog []string
	// Named and General count classified rows across both periods.
	Named   int
	General int
}

// Aggregate attributes every row of both periods to a school and phase and
// builds the per-school read-model, sorted by display name.
func Aggregate(current, previous []models.AdRow, opts ...Option) []models.SchoolAggregate {
	return AggregateDetailed(current, previous, opts...).Schools
}

// AggregateDetailed is Aggregate plus the catalog and classification counts.
func AggregateDetailed(current, previous []models.AdRow, opts ...Option) Result {
	o := newOptions(opts)

	names := make([]string, 0, len(current)+len(previous))
	for _, r := range current {
		names = append(names, r.AdSetName)
	}
	for _, r := range previous {
		names = append(names, r.AdSetName)
	}
	catalogNames := attribution.BuildCatalog(names, o.syntheses...)
	catalog := attribution.NewCatalog(catalogNames)

	cur := attribute(current, catalog)
	prev := attribute(previous, catalog)

	res := Result{Catalog: catalog.Names()}
	named := newGroups()
	general := newGroups()
	for _, r := range cur {
		if r.School == models.GeneralSchool {
			general.add(string(r.Phase), r, true)
			res.General++
			continue
		}
		named.add(r.School, r, true)
		res.Named++
	}
	for _, r := range prev {
		if r.School == models.GeneralSchool {
			general.add(string(r.Phase), r, false)
			res.General++
			continue
		}
		named.add(r.School, r, false)
		res.Named++
	}

	schools := make([]models.SchoolAggregate, 0, len(named.order)+len(general.order))
	for _, school := range named.order {
		schools = append(schools, namedSchool(school, named.byKey[school], o))
	}
	for _, phase := range general.order {
		schools = append(schools, generalSchool(models.Phase(phase), general.byKey[phase], o))
	}

	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(schools, func(i, j int) bool {
		return col.CompareString(schools[i].DisplayName, schools[j].DisplayName) < 0
	})
	res.Schools = schools
	return res
}

func attribute(rows []models.AdRow, catalog *attribution.Catalog) []attributedRow {
	out := make([]attributedRow, len(rows))
	for i, r := range rows {
		out[i] = attributedRow{AdRow: r, Classification: attribution.Classify(r.AdSetName, catalog)}
	}
	return out
}

type periodRows struct {
	current  []attributedRow
	previous []attributedRow
}

type groups struct {
	order []string
	byKey map[string]*periodRows
}

func newGroups() *groups { return &groups{byKey: make(map[string]*periodRows)} }

func (g *groups) add(key string, r attributedRow, current bool) {
	bucket, ok := g.byKey[key]
	if !ok {
		bucket = &periodRows{}
		g.byKey[key] = bucket
		g.order = append(g.order, key)
	}
	if current {
		bucket.current = append(bucket.current, r)
	} else {
		bucket.previous = append(bucket.previous, r)
	}
}

// namedSchool gets an All phase covering every row regardless of detected phase.
func namedSchool(school string, rows *periodRows, o options) models.SchoolAggregate {
	var observed []models.Phase
	seen := map[models.Phase]bool{}
	for _, r := range append(append([]attributedRow{}, rows.current...), rows.previous...) {
		if !seen[r.Phase] {
			seen[r.Phase] = true
			observed = append(observed, r.Phase)
		}
	}
	available := []models.Phase{models.PhaseAll}
	for _, p := range observed {
		if p != models.PhaseAll {
			available = append(available, p)
		}
	}

	data := make(map[models.Phase]models.PhaseMetrics, len(available))
	for _, p := range available {
		data[p] = phaseMetrics(p, filterPhase(rows.current, p), filterPhase(rows.previous, p), o)
	}

	label := phaseLabelMix
	if len(observed) == 1 {
		label = string(observed[0])
	}
	return models.SchoolAggregate{
		Slug:            Slugify(school),
		School:          school,
		DisplayName:     school,
		PhaseLabel:      label,
		AvailablePhases: available,
		PhaseData:       data,
		ListMetrics:     data[models.PhaseAll].Current,
	}
}

// generalSchool covers one detected phase of unmatched rows. General buckets
// are never rolled up across phases.
func generalSchool(phase models.Phase, rows *periodRows, o options) models.SchoolAggregate {
	pm := phaseMetrics(phase, rows.current, rows.previous, o)
	return models.SchoolAggregate{
		Slug:            Slugify(models.GeneralSchool + " " + string(phase)),
		School:          models.GeneralSchool,
		DisplayName:     models.GeneralSchool + " (" + string(phase) + ")",
		PhaseLabel:      string(phase),
		AvailablePhases: []models.Phase{phase},
		PhaseData:       map[models.Phase]models.PhaseMetrics{phase: pm},
		ListMetrics:     pm.Current,
	}
}

func filterPhase(rows []attributedRow, p models.Phase) []attributedRow {
	if p == models.PhaseAll {
		return rows
	}
	var out []attributedRow
	for _, r := range rows {
		if r.Phase == p {
			out = append(out, r)
		}
	}
	return out
}

func phaseMetrics(p models.Phase, current, previous []attributedRow, o options) models.PhaseMetrics {
	cur := compute(adRows(current), o.leadSubmissionType)
	prev := compute(adRows(previous), o.leadSubmissionType)
	return models.PhaseMetrics{
		Phase:        p,
		Current:      cur,
		Previous:     prev,
		YoY:          CompareYoY(cur, prev),
		TopCampaigns: breakdown(current, func(r attributedRow) string { return r.CampaignName }),
		TopAdSets:    breakdown(current, func(r attributedRow) string { return r.AdSetName }),
	}
}

func adRows(rows []attributedRow) []models.AdRow {
	out := make([]models.AdRow, len(rows))
	for i, r := range rows {
		out[i] = r.AdRow
	}
	return out
}

// Compute sums a row set and derives CPL, CPC and CTR. Ratios are zero when
// their denominator is zero.
func Compute(rows []models.AdRow) models.Metrics {
	return compute(rows, DefaultLeadSubmissionType)
}

func compute(rows []models.AdRow, submissionType string) models.Metrics {
	var m models.Metrics
	for _, r := range rows {
		rt := strings.TrimSpace(r.ResultType)
		if leadType.MatchString(rt) {
			m.LeadsTotal += r.Results
		}
		if rt == submissionType {
			m.LeadSubmissions += r.Results
		}
		m.Spend += r.AmountSpent
		m.Clicks += r.Clicks
		m.Impressions += r.Impressions
		m.Reach += r.Reach
	}
	m.CPL = safeDivF(m.Spend, m.LeadsTotal)
	m.CPC = safeDivF(m.Spend, m.Clicks)
	m.CTR = safeDivF(m.Clicks, m.Impressions)
	return m
}

// CompareYoY builds the year-over-year block shown next to every metric set.
func CompareYoY(cur, prev models.Metrics) models.YoYMetrics {
	return models.YoYMetrics{
		LeadsTotal: format.YoY(cur.LeadsTotal, prev.LeadsTotal, format.KindNumber),
		Spend:      format.YoY(cur.Spend, prev.Spend, format.KindCurrency),
		CPL:        format.YoY(cur.CPL, prev.CPL, format.KindCurrency),
		Clicks:     format.YoY(cur.Clicks, prev.Clicks, format.KindNumber),
		CTR:        format.YoY(cur.CTR, prev.CTR, format.KindRatio),
		CPC:        format.YoY(cur.CPC, prev.CPC, format.KindCurrency),
	}
}

func breakdown(rows []attributedRow, key func(attributedRow) string) []models.Ranking {
	var order []string
	buckets := map[string]*models.Ranking{}
	for _, r := range rows {
		name := strings.TrimSpace(key(r))
		if name == "" {
			name = unknownName
		}
		b, ok := buckets[name]
		if !ok {
			b = &models.Ranking{Name: name}
			buckets[name] = b
			order = append(order, name)
		}
		if leadType.MatchString(strings.TrimSpace(r.ResultType)) {
			b.Leads += r.Results
		}
		b.Spend += r.AmountSpent
	}

	out := make([]models.Ranking, 0, len(order))
	for _, name := range order {
		b := *buckets[name]
		b.CPL = safeDivF(b.Spend, b.Leads)
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Leads > out[j].Leads })
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify turns a display name into a URL path segment.
func Slugify(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	return slugDashes.ReplaceAllString(s, "-")
}

func safeDivF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
