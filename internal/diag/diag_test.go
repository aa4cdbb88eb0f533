package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_Report(t *testing.T) {
	tests := []struct {
		name     string
		severity Severity
		file     string
		line     int
		message  string
		expected string
	}{
		{
			name:     "warning with position",
			severity: Warning,
			file:     "routes.go",
			line:     12,
			message:  "undocumented route",
			expected: "warning: routes.go:12: undocumented route\n",
		},
		{
			name:     "error without line",
			severity: Error,
			file:     "routes.go",
			message:  "cannot resolve type User",
			expected: "error: routes.go: cannot resolve type User\n",
		},
		{
			name:     "fatal without file",
			severity: Fatal,
			message:  "configuration is invalid",
			expected: "fatal: configuration is invalid\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := &Console{Out: &buf, NoColor: true}
			c.Report(tc.severity, tc.file, tc.line, tc.message)
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestFunc_Report(t *testing.T) {
	var got string
	f := Func(func(severity Severity, file string, line int, message string) {
		got = severity.String() + " " + message
	})
	f.Report(Warning, "", 0, "non-literal path")
	assert.Equal(t, "warning non-literal path", got)
}
