package domain

import (
	"path"
	"strings"
)

// Entity is one recognition result as returned by the recognition service.
// Its fields are stored and served verbatim.
type Entity map[string]any

// Record is the metadata stored for one uploaded image.
type Record struct {
	ID       string   `json:"id" dynamodbav:"id"`
	Metadata []Entity `json:"metadata" dynamodbav:"metadata"`
}

// ObjectRef identifies an uploaded object in the object store.
type ObjectRef struct {
	Bucket string
	Key    string
}

// RecordID derives the record id from an object key: directory components
// and the final extension are removed ("photos/party.jpg" -> "party").
// A leading dot does not start an extension (".env" -> ".env").
func RecordID(key string) string {
	if key == "" {
		return ""
	}

	base := path.Base(key)
	if base == "/" || base == "." || base == ".." {
		return strings.Trim(base, "/")
	}

	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}
