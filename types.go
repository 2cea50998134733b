package agvd

import (
	"gopkg.in/guregu/null.v3"
)

// ClusterMAF is one population cluster's minor allele frequency for a
// variant.
type ClusterMAF struct {
	Name string     `json:"name"`
	MAF  null.Float `json:"maf"`
}

// VariantResult is the AGVD answer for one queried identifier. The JSON tags
// match the GraphQL response fields, so the same struct round-trips through
// the query cache unchanged. AfricanMAF is the continental frequency that
// AGVD reports under its historical field name mafThreshold.
type VariantResult struct {
	VariantID     string       `json:"variantID"`
	AfricanMAF    null.Float   `json:"mafThreshold"`
	Status        null.String  `json:"agvdThresholdStatus"`
	UsedThreshold null.Float   `json:"usedThreshold"`
	Clusters      []ClusterMAF `json:"clusters"`
}

// SearchOptions carries the per-run query parameters that accompany every
// batch.
type SearchOptions struct {
	// Threshold is the MAF cutoff requested of the server.
	Threshold float64

	// Clusters optionally restricts which population clusters the server
	// reports. Empty means all.
	Clusters []string
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type searchResponse struct {
	Data struct {
		CliVariantSearch []VariantResult `json:"cliVariantSearch"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}
