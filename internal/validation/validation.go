// Package validation checks identifiers, paths, origins and URLs that come
// from HTTP requests, config files and the command line before they reach
// the file store or the network.
package validation

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const maxProjectIDLength = 128

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// dangerousPathChars may not appear in a stored file path.
var dangerousPathChars = []string{"\x00", ";", "&", "|", "$", "`", "<", ">", "\n", "\r"}

// ValidateProjectID checks that id can be used as a single directory name.
func ValidateProjectID(id string) error {
	if id == "" {
		return fmt.Errorf("project id cannot be empty")
	}
	if len(id) > maxProjectIDLength {
		return fmt.Errorf("project id longer than %d characters", maxProjectIDLength)
	}
	if !projectIDPattern.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid project id: %q", id)
	}
	return nil
}

// CleanRelativePath validates a slash-separated path inside a project and
// returns it cleaned. Absolute paths and any ".." component are rejected.
func CleanRelativePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	for _, char := range dangerousPathChars {
		if strings.Contains(p, char) {
			return "", fmt.Errorf("path contains dangerous character: %q", char)
		}
	}

	slashed := strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", fmt.Errorf("absolute path not allowed: %s", p)
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return "", fmt.Errorf("path traversal detected: %s", p)
		}
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." {
		return "", fmt.Errorf("path cannot be empty")
	}
	return cleaned, nil
}

// ValidatePath checks a path given on the command line or in config.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}

	cleanPath := filepath.Clean(p)
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("path traversal detected: %s", p)
		}
	}

	restrictedPaths := []string{"/etc/", "/proc/", "/sys/", "/dev/", "/boot/"}
	lower := strings.ToLower(filepath.ToSlash(cleanPath)) + "/"
	for _, restricted := range restrictedPaths {
		if strings.HasPrefix(lower, restricted) {
			return fmt.Errorf("access to restricted path denied: %s", p)
		}
	}

	for _, char := range dangerousPathChars {
		if strings.Contains(p, char) {
			return fmt.Errorf("path contains dangerous character: %q", char)
		}
	}

	return nil
}

// ValidateOrigin checks a websocket or API Origin header against the allowed
// list. Entries may be full origins ("http://localhost:3000") or hosts.
func ValidateOrigin(origin string, allowedOrigins []string) error {
	if origin == "" {
		return fmt.Errorf("origin header is required")
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin format: %w", err)
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return fmt.Errorf("invalid origin scheme '%s': only http and https are allowed", originURL.Scheme)
	}

	for _, allowed := range allowedOrigins {
		if allowed == "*" || origin == allowed || originURL.Host == allowed {
			return nil
		}
	}

	return fmt.Errorf("origin '%s' is not in allowed origins list", origin)
}

// ValidateFileExtension checks filename against an allowlist such as
// []string{".html", ".htm"}.
func ValidateFileExtension(filename string, allowedExtensions []string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("file must have an extension")
	}

	for _, allowed := range allowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}

	return fmt.Errorf("file extension '%s' is not allowed", ext)
}

// ValidateURL checks an http(s) URL used for the code-edit endpoint or for
// opening the browser.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}

	dangerous := []string{";", "|", "`", "$", "<", ">", "\"", "'", "\\", "\n", "\r", " "}
	for _, char := range dangerous {
		if strings.Contains(rawURL, char) {
			return fmt.Errorf("URL contains dangerous character: %q", char)
		}
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	return nil
}
