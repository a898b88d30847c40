package labelprep

type options struct {
	taxonomyPath string
	taxonomyYAML []byte
	exclude      []int
	workers      int
}

// Option configures a Preparer.
type Option func(*options)

// WithTaxonomyFile loads the label taxonomy from a YAML file instead of the
// built-in one.
func WithTaxonomyFile(path string) Option {
	return func(o *options) {
		o.taxonomyPath = path
	}
}

// WithTaxonomyYAML parses the label taxonomy from YAML bytes.
func WithTaxonomyYAML(data []byte) Option {
	return func(o *options) {
		o.taxonomyYAML = data
	}
}

// WithExclude drops the given codes from every normalized record.
// Every code must exist in the taxonomy.
func WithExclude(codes ...int) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, codes...)
	}
}

// WithWorkers bounds NormalizeRecords concurrency. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
