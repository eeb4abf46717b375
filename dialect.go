package autoqa

import (
	"regexp"
	"strings"
)

// Dialect describes the language and automation framework of generated scripts.
type Dialect struct {
	// Name identifies the dialect on the command line.
	Name string

	// Framework names the automation library for prompts.
	Framework string

	// StartPattern matches the first line of code, typically an import.
	StartPattern *regexp.Regexp

	// TerminalCall is the session shutdown statement that ends a script.
	TerminalCall string

	// Interpreter is the command used to run a persisted script.
	Interpreter []string

	// ScriptName is the default artifact file name.
	ScriptName string

	// Instructions are dialect-specific prompt rules.
	Instructions []string
}

// pythonImport matches a Python import statement at the start of a line.
var pythonImport = regexp.MustCompile(`(?m)^(from\s+\S+\s+import\s+\S+|import\s+\S+)`)

// Built-in dialects.
var (
	DialectSelenium = &Dialect{
		Name:         "selenium",
		Framework:    "Selenium 4 (Python)",
		StartPattern: pythonImport,
		TerminalCall: "driver.quit()",
		Interpreter:  []string{"python3"},
		ScriptName:   "generated_test.py",
		Instructions: []string{
			"Use only find_element(By.<LOCATOR>, value) and find_elements(By.<LOCATOR>, value); never use deprecated find_element_by_* methods.",
			"Import By from selenium.webdriver.common.by at the top of the code.",
			"Open the page using ChromeDriver (not headless) and maximize the window.",
		},
	}

	DialectPlaywright = &Dialect{
		Name:         "playwright",
		Framework:    "Playwright sync API (Python)",
		StartPattern: pythonImport,
		TerminalCall: "browser.close()",
		Interpreter:  []string{"python3"},
		ScriptName:   "generated_test.py",
		Instructions: []string{
			"Use playwright.sync_api.sync_playwright and page.locator() for every element lookup.",
			"Launch Chromium with headless=False and set a 1920x1080 viewport.",
		},
	}
)

// Dialects returns the built-in dialects.
func Dialects() []*Dialect {
	return []*Dialect{DialectSelenium, DialectPlaywright}
}

// FindDialect returns the built-in dialect with the given name.
// Returns ENOTFOUND for unknown names.
func FindDialect(name string) (*Dialect, error) {
	for _, d := range Dialects() {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return nil, Errorf(ENOTFOUND, "unknown dialect %q", name)
}
