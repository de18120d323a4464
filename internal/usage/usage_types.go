package usage

// Counts holds token sums for one dimension.
type Counts struct {
	Calls  int   `json:"calls"`
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

// Add records one call.
func (c *Counts) Add(input, output int) {
	c.Calls++
	c.Input += int64(input)
	c.Output += int64(output)
	c.Total += int64(input + output)
}

// Stats is a snapshot of a Tracker.
type Stats struct {
	Total   Counts            `json:"total"`
	ByModel map[string]Counts `json:"byModel,omitempty"`
	ByLabel map[string]Counts `json:"byLabel,omitempty"` // e.g. "section:market"
	ByStep  map[string]Counts `json:"byStep,omitempty"`  // label prefix, e.g. "section"
}
