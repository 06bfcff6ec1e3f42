package version

// Set via -ldflags at build time.
var (
	AppName   = "Superintendent"
	Version   = "dev"
	BuildDate = "unknown"
)
