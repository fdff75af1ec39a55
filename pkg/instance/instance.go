package instance

import "os"

// GetID names the running process for logs: the platform dyno, then the
// container hostname, else "local".
func GetID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
