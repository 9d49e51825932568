package feed

// Default values substituted at construction time for absent feed fields.
const (
	DefaultTitle   = "No title available"
	DefaultSummary = "No summary available"
)

// Entry is one normalized item of a parsed feed document, pre-enrichment.
// Optional fields are resolved to their documented defaults exactly once,
// when the entry is built; consumers never re-check for absence.
type Entry struct {
	Title     string
	Link      string
	Summary   string
	Published string
	ImageURL  string
}

// ArticleRecord is one feed entry after enrichment with full-page text and
// image, shaped for export. The schema is unified across single and batch
// mode: every field is always present, empty string when inapplicable.
type ArticleRecord struct {
	From           string
	Subject        string
	Message        string
	Reply          string
	Timestamp      string
	ExpectedAction string
	ImageURL       string
	Subtitle       string
}

// FilterRule is one source-level include/exclude rule, applied to entries
// before enrichment.
type FilterRule struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
