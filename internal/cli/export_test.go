package cli

// Aliases for the command runners and helpers under test.

var (
	RunTranscribe          = runTranscribe
	ParseTranscribeOptions = parseTranscribeOptions
	RunSummarize           = runSummarize
	RunProbe               = runProbe
	RunConfigSet           = runConfigSet
	RunConfigGet           = runConfigGet
	RunConfigList          = runConfigList
	SupportedFormatsList   = supportedFormatsList
	SummaryArtifactPath    = summaryArtifactPath
	IsValidConfigKey       = isValidConfigKey
	ValidConfigKeys        = validConfigKeys
)

type (
	TranscribeOptions = transcribeOptions
	SummarizeOptions  = summarizeOptions
)
