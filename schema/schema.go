// Package schema has the models shared by every stage of the hotspot pipeline.
package schema

// FileRef is a discovered file together with the language it was classified as.
// Path is kept exactly as it was encountered during the walk.
type FileRef struct {
	Path string
	Lang Lang
}

// Element is a function or method found in a source file.
type Element struct {
	Name  string // Function name, receiver-qualified for Go methods
	File  string // Path of the file it was found in
	Line  int    // 1-based line of the name
	Group uint32 // Query capture index the name came from
}

// ReportRow is one ranked line of the final report.
type ReportRow struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Name string `json:"function"`
	Freq int    `json:"frequency"`
}

// RankedRow adds presentation data to a ReportRow.
type RankedRow struct {
	Rank int `json:"rank"`
	ReportRow
}

// RankRows numbers the rows starting from offset+1.
func RankRows(rows []ReportRow, offset int) []RankedRow {
	output := make([]RankedRow, len(rows))
	for i, r := range rows {
		output[i] = RankedRow{
			Rank:      offset + i + 1,
			ReportRow: r,
		}
	}
	return output
}
