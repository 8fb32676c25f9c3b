/*
dto.go - Request/response data structures

Tables travel as a columns array plus rows of cell arrays, exactly the shape
a spreadsheet hands over. Cells stay strings; numeric text keeps its
localized encoding untouched.
*/
package api

// TableDTO is the wire form of a table.
type TableDTO struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RunResponse summarizes a completed pipeline run.
type RunResponse struct {
	Records    int   `json:"records"`
	Locations  int   `json:"locations"`
	DurationMS int64 `json:"duration_ms"`
}

// ErrorResponse is the error payload for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
