package cliconstants

// DefaultConfigFileName is the default name of the login file
const DefaultConfigFileName = "mam-uploader.json"

// ExitCodeUploadFailed is returned if at least one file could not be uploaded
const ExitCodeUploadFailed = 1

// ExitCodeConfigError is returned if the login or the parameters are invalid
const ExitCodeConfigError = 2

// ExitCodeInvalidUsage is returned if the command line could not be parsed
const ExitCodeInvalidUsage = 3

// ExitCodeCancelled is returned if the upload was interrupted
const ExitCodeCancelled = 4
