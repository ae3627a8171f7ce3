// Package user_agent recognises automated clients from their User-Agent.
package user_agent

import (
	"devicescan/internal/pkg/pattern"
)

// BotEntry is one known automation client.
type BotEntry struct {
	Name  string
	Regex string
}

// bots is checked in order; the first match names the client.
var bots = []BotEntry{
	{Name: "Headless Chrome", Regex: `HeadlessChrome/`},
	{Name: "PhantomJS", Regex: `PhantomJS/`},
	{Name: "Selenium", Regex: `(?i)selenium`},
	{Name: "Puppeteer", Regex: `(?i)puppeteer`},
	{Name: "Playwright", Regex: `(?i)playwright`},
	{Name: "Electron", Regex: `Electron/\d`},
	{Name: "curl", Regex: `^curl/`},
	{Name: "Wget", Regex: `^Wget/`},
	{Name: "Python Requests", Regex: `^python-requests/`},
	{Name: "Go HTTP Client", Regex: `^Go-http-client/`},
	{Name: "Generic Crawler", Regex: `(?i)(?:bot|crawler|spider|slurp)(?:[/\s;)]|$)`},
}

var cache = pattern.NewCache()

// DetectAutomation returns the name of the automation client ua belongs
// to, if any.
func DetectAutomation(ua string) (string, bool) {
	if ua == "" {
		return "", false
	}
	for _, bot := range bots {
		regex, err := cache.Get(bot.Regex)
		if err != nil {
			continue
		}
		if regex.MatchString(ua) {
			return bot.Name, true
		}
	}
	return "", false
}
