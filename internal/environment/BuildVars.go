package environment

/**
Variables that are set during build
*/

// Version is the release of the uploader (auto-generated value)
var Version = "dev"

// BuildTime is the time of the build (auto-generated value)
var BuildTime = "Dev Build"

// Builder is the name of builder (auto-generated value)
var Builder = "Manual Build"

// VersionString returns the version together with the build information
func VersionString() string {
	return "MAM Uploader " + Version + " (" + BuildTime + ", " + Builder + ")"
}
