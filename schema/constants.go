package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string

	// Lang is the language a file was classified as.
	Lang string
)

// All languages known to the extractors.
const (
	GoLang          Lang = "go"
	RustLang        Lang = "rust"
	LuaLang         Lang = "lua"
	UnsupportedLang Lang = "unsupported"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All tracking backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// ExtractionOrder is the fixed order in which the pipeline runs the extractors.
var ExtractionOrder = []Lang{GoLang, RustLang, LuaLang}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid tracking backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// extensionTags maps a file extension to the tag the detector reports for it.
var extensionTags = map[string]string{
	".go":  "go",
	".rs":  "rust",
	".lua": "lua",
}

// TagForExtension returns the detector tag for an extension such as ".rs",
// or "" when the extension is not recognised.
func TagForExtension(ext string) string {
	return extensionTags[ext]
}

// LangFromTag maps a detector tag onto a Lang. Anything unknown is UnsupportedLang.
func LangFromTag(tag string) Lang {
	switch tag {
	case "go":
		return GoLang
	case "rust":
		return RustLang
	case "lua":
		return LuaLang
	default:
		return UnsupportedLang
	}
}
