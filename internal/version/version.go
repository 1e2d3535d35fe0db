package version

const (
	AppName = "Blabber"
	Version = "0.2.0"
)
