package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultNamePrefix = "output"

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if trimmed == "" {
		return "png"
	}
	return sanitizePathSegment(trimmed)
}

// buildObjectName returns output-<unix millis>-<uuid>.<ext>. The millisecond
// stamp keeps names sortable; the uuid keeps them unique within one millisecond.
func buildObjectName(prefix, ext string, now time.Time) string {
	prefix = sanitizePathSegment(prefix)
	if prefix == "" {
		prefix = defaultNamePrefix
	}
	return fmt.Sprintf("%s-%d-%s.%s", prefix, now.UnixMilli(), uuid.NewString(), normalizeExtension(ext))
}

// buildObjectKey places a name under a dated directory for remote buckets.
func buildObjectKey(bucketPrefix, name string, now time.Time) string {
	datedir := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	return joinPrefix(bucketPrefix, path.Join(datedir, name))
}

func detectContentType(ext string) string {
	typeName := mime.TypeByExtension("." + normalizeExtension(ext))
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

// PublicURLBuilder returns a function mapping a stored key to the URL the
// dashboard and chat replies should link. Local files are served at their
// basename; remote keys are appended to the public base.
func PublicURLBuilder(store Storage, publicBase string) func(key string) string {
	base := strings.TrimRight(strings.TrimSpace(publicBase), "/")
	_, local := store.(LocalBaseDirProvider)
	return func(key string) string {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return ""
		}
		if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
			return trimmed
		}
		if local {
			trimmed = path.Base(strings.ReplaceAll(trimmed, "\\", "/"))
		}
		return base + "/" + strings.TrimLeft(trimmed, "/")
	}
}
