package types

// ReorganiseOutputs names the three files the reorganiser writes next to its source.
type ReorganiseOutputs struct {
	Sorted         string `json:"sorted"`
	Minified       string `json:"minified"`
	MinifiedSorted string `json:"minifiedSorted"`
}
