package summarize

// Aliases so the black-box tests can reach the error classifier and the
// token estimator.
var (
	ClassifySummaryError = classifySummaryError
	EstimateTokens       = estimateTokens
)

// NewTestSummarizer builds an OpenAISummarizer around a stub chat client,
// with the same defaults NewOpenAISummarizer applies.
func NewTestSummarizer(client chatCompleter, opts ...Option) *OpenAISummarizer {
	s := NewOpenAISummarizer(nil, opts...)
	s.client = client
	return s
}
