package audio

// Aliases so the black-box tests can reach the parsing helpers and the
// dependency seams.

var (
	ParseDurationFromFFmpegOutput = parseDurationFromFFmpegOutput
	ParseTimeComponents           = parseTimeComponents
	FormatFFmpegTime              = formatFFmpegTime
	ChunkEncodingArgs             = chunkEncodingArgs
)

type (
	CommandRunner  = commandRunner
	TempDirCreator = tempDirCreator
	FileRemover    = fileRemover
	FileStatter    = fileStatter
	DirReader      = dirReader
)
