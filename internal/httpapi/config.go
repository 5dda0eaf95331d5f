package httpapi

// maxUploadBytes controls the maximum allowed request body size for the
// multipart upload endpoint. Default matches the original 10 MiB limit.
var maxUploadBytes int64 = 10 << 20

// SetMaxUploadBytes allows configuring the maximum upload size.
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = 10 << 20
		return
	}
	maxUploadBytes = n
}

// staticDir, when non-empty, is served under /static/ for result downloads.
var staticDir string

// SetStaticDir configures the directory served under /static/.
func SetStaticDir(dir string) { staticDir = dir }

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
