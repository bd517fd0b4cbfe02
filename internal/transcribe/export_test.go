package transcribe

// Aliases so the black-box tests can reach the status parser and the
// error classifiers.

var (
	ParseJobStatus         = parseJobStatus
	ClassifyHTTPStatus     = classifyHTTPStatus
	ClassifyTransportError = classifyTransportError
)
