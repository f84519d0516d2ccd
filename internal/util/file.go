package util

import (
	"fmt"
	"strings"
	"time"
)

// Example output for "ex.txt": "21313123123_ex.txt"
func AddUniquePrefixToFileName(fileName string) string {
	uniquePrefix := fmt.Sprintf("%d", time.Now().UnixNano())
	return fmt.Sprintf("%s_%s", uniquePrefix, fileName)
}

// ToSignedDocumentFilename synthesizes the stored name of a signed output
// from the requester's name snapshot: lowercased, runs of whitespace
// collapsed to single underscores, suffixed "-signed-document.pdf".
// "  Jane   Doe  " becomes "jane_doe-signed-document.pdf".
func ToSignedDocumentFilename(requesterName string) string {
	name := strings.ToLower(strings.TrimSpace(requesterName))
	name = strings.Join(strings.Fields(name), "_")
	return name + "-signed-document.pdf"
}
