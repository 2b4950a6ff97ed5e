package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage uploads media blobs and returns publicly reachable URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, pathPrefix string, data io.Reader, size int64, contentType string) (string, error)
}

// ObjectName builds the upload key: <prefix>/<unix-ms>-<12 hex chars>.<ext>.
func ObjectName(pathPrefix, contentType string) string {
	ext := extensionFor(contentType)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s/%d-%s.%s", strings.Trim(pathPrefix, "/"), time.Now().UnixMilli(), suffix, ext)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "video/mp4":
		return "mp4"
	case "video/quicktime":
		return "mov"
	default:
		if idx := strings.IndexByte(contentType, '/'); idx >= 0 && idx+1 < len(contentType) {
			return contentType[idx+1:]
		}
		return "bin"
	}
}
