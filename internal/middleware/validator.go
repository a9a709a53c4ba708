package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

const (
	maxFilenameLen = 255
	maxQueryLen    = 4096
	maxTagLen      = 64
	maxTags        = 32
)

var (
	tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	tagPattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	docIDPattern  = regexp.MustCompile(`^[0-9]{8}T[0-9]{6}\.[0-9]{9}_[0-9]{6}_[a-f0-9]{16}$`)
)

// ValidateFilename rejects empty names and path components.
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(name) > maxFilenameLen {
		return fmt.Errorf("filename too long (max %d chars)", maxFilenameLen)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("filename must not contain path separators")
	}
	return nil
}

// ValidateContentType checks for a type/subtype shape.
func ValidateContentType(ct string) error {
	if ct == "" {
		return fmt.Errorf("content type cannot be empty")
	}
	parts := strings.SplitN(ct, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid content type: %s", ct)
	}
	return nil
}

// ValidateTags checks tag count and format.
func ValidateTags(tags []string) error {
	if len(tags) > maxTags {
		return fmt.Errorf("too many tags (max %d)", maxTags)
	}
	for _, t := range tags {
		if len(t) == 0 || len(t) > maxTagLen {
			return fmt.Errorf("tag length must be 1-%d chars", maxTagLen)
		}
		if !tagPattern.MatchString(t) {
			return fmt.Errorf("invalid tag: %s", t)
		}
	}
	return nil
}

// ValidateQuery bounds query length.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if len(query) > maxQueryLen {
		return fmt.Errorf("query too long (max %d chars)", maxQueryLen)
	}
	return nil
}

// ValidateDocID validates the document id format
func ValidateDocID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID cannot be empty")
	}
	if !docIDPattern.MatchString(id) {
		return fmt.Errorf("invalid document ID format")
	}
	return nil
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
