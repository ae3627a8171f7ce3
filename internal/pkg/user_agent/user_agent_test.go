package user_agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"devicescan/internal/pkg/user_agent"
)

func TestDetectAutomation(t *testing.T) {
	testCases := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{
			name:      "headless chrome",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/120.0.0.0 Safari/537.36",
			expected:  "Headless Chrome",
		},
		{
			name:      "googlebot",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			expected:  "Generic Crawler",
		},
		{
			name:      "curl",
			userAgent: "curl/8.5.0",
			expected:  "curl",
		},
		{
			name:      "python requests",
			userAgent: "python-requests/2.31.0",
			expected:  "Python Requests",
		},
	}

	for _, tc := range testCases {
		t.Run("detects "+tc.name, func(t *testing.T) {
			name, ok := user_agent.DetectAutomation(tc.userAgent)
			assert.True(t, ok)
			assert.Equal(t, tc.expected, name)
		})
	}

	browsers := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.2; rv:121.0) Gecko/20100101 Firefox/121.0",
		"",
	}
	for _, ua := range browsers {
		t.Run("ignores browser "+ua, func(t *testing.T) {
			_, ok := user_agent.DetectAutomation(ua)
			assert.False(t, ok)
		})
	}
}
