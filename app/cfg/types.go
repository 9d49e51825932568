package cfg

type Cfg struct {
	// Application configuration
	Port          string
	SourcesDir    string
	ArticleLimit  int
	ExtractPolicy string
	WorkerCount   int
	Timeout       int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
