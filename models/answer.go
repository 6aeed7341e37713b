package models

// SynthesisResult is the result of a single-jurisdiction chat query
type SynthesisResult struct {
	Answer           string  `json:"answer"`
	RelatedLawIDList []int64 `json:"related_law_id_list"`
	SearchSuccess    bool    `json:"search_success"`
}

// CountryResult is the per-jurisdiction half of a comparison
type CountryResult struct {
	RelatedLawIDs []int64 `json:"related_law_ids"`
	Summary       string  `json:"summary"`
}

// CompareAnalysis holds the common/diff analysis of two jurisdictions
type CompareAnalysis struct {
	Common string `json:"common"`
	Diff   string `json:"diff"`
}

// ComparisonResult is the result of a two-jurisdiction comparison
type ComparisonResult struct {
	Country1Result CountryResult   `json:"country_1_result"`
	Country2Result CountryResult   `json:"country_2_result"`
	CompareSummary CompareAnalysis `json:"compare_summary"`
	SearchSuccess  bool            `json:"search_success"`
}

// CommonResponse is the envelope returned by every API endpoint
type CommonResponse struct {
	IsSuccess bool        `json:"isSuccess"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Result    interface{} `json:"result"`
}
