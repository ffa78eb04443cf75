package app

import (
	"log"
	"mime"
)

func init() {
	for ext, typ := range map[string]string{
		".css": "text/css; charset=utf-8",
		".js":  "text/javascript; charset=utf-8",
		".svg": "image/svg+xml",
	} {
		ensureMimeType(ext, typ)
	}
}

// ensureMimeType registers typ for ext when the host mime database lacks it.
func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: failed to register MIME type for %s: %v", ext, err)
	}
}
