package osutil

import (
	"os"
)

// IsDevEnvironment checks if the application is running in a development
// environment based on environment variables
func IsDevEnvironment() bool {
	return os.Getenv("PROFILEPORT_ENV") == "development" ||
		os.Getenv("PROFILEPORT_DEV") == "true" ||
		os.Getenv("DEV") == "true" ||
		os.Getenv("DEBUG") == "true"
}

// IsCIEnvironment returns true if running in a CI/CD pipeline environment
func IsCIEnvironment() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("PIPELINE") == "true" ||
		os.Getenv("GITHUB_ACTIONS") == "true" ||
		os.Getenv("JENKINS_URL") != ""
}
