package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProjectID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "landing-page", false},
		{"with dots and underscores", "site_v2.1", false},
		{"empty", "", true},
		{"traversal", "..", true},
		{"double dot inside", "a..b", true},
		{"slash", "a/b", true},
		{"leading dash", "-x", true},
		{"too long", strings.Repeat("a", 129), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCleanRelativePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
		wantErr  bool
	}{
		{"plain", "src/App.tsx", "src/App.tsx", false},
		{"redundant segments", "./src//components/./Button.jsx", "src/components/Button.jsx", false},
		{"backslashes", `src\pages\index.tsx`, "src/pages/index.tsx", false},
		{"empty", "", "", true},
		{"dot", ".", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"traversal", "../secrets.env", "", true},
		{"nested traversal", "src/../../x", "", true},
		{"windows traversal", `..\x`, "", true},
		{"shell character", "src/$(id).tsx", "", true},
		{"null byte", "a\x00b", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanRelativePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("./projects"))
	assert.NoError(t, ValidatePath("/var/lib/vedit"))
	assert.NoError(t, ValidatePath("/etcetera/data"))
	assert.Error(t, ValidatePath(""))
	assert.Error(t, ValidatePath("../outside"))
	assert.Error(t, ValidatePath("/etc/vedit"))
	assert.Error(t, ValidatePath("/proc/self"))
	assert.Error(t, ValidatePath("data|x"))
}

func TestValidateOrigin(t *testing.T) {
	allowed := []string{"localhost:5173", "https://editor.example.com"}

	tests := []struct {
		name    string
		origin  string
		allowed []string
		wantErr bool
	}{
		{"host match", "http://localhost:5173", allowed, false},
		{"full origin match", "https://editor.example.com", allowed, false},
		{"wildcard", "http://anything.test", []string{"*"}, false},
		{"not allowed", "http://evil.test", allowed, true},
		{"missing", "", allowed, true},
		{"bad scheme", "file://localhost:5173", allowed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrigin(tt.origin, tt.allowed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFileExtension(t *testing.T) {
	html := []string{".html", ".htm"}
	assert.NoError(t, ValidateFileExtension("index.HTML", html))
	assert.Error(t, ValidateFileExtension("index.tsx", html))
	assert.Error(t, ValidateFileExtension("README", html))
	assert.Error(t, ValidateFileExtension("", html))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:8080", false},
		{"https with path and query", "https://api.example.com/v1/edit?x=1&y=2", false},
		{"javascript scheme", "javascript:alert(1)", true},
		{"file scheme", "file:///etc/passwd", true},
		{"injection", "http://localhost:8080;rm", true},
		{"spaces", "http://localhost:8080/a b", true},
		{"newline", "http://localhost:8080\nHost: x", true},
		{"no host", "http://", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func FuzzCleanRelativePath(f *testing.F) {
	f.Add("src/App.tsx")
	f.Add("../x")
	f.Add("a/b/../../..")
	f.Add(`..\..\windows`)
	f.Add("/abs")
	f.Add("")

	f.Fuzz(func(t *testing.T, p string) {
		cleaned, err := CleanRelativePath(p)
		if err != nil {
			return
		}
		if strings.HasPrefix(cleaned, "/") {
			t.Errorf("absolute result %q for %q", cleaned, p)
		}
		for _, part := range strings.Split(cleaned, "/") {
			if part == ".." {
				t.Errorf("traversal survived in %q for %q", cleaned, p)
			}
		}
	})
}
