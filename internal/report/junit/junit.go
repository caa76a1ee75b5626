// Package junit renders a run's result records as a JUnit-compatible XML
// test suite, for consumption by CI systems.
package junit

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/lorikeet-run/lorikeet/internal/result"
)

type testSuite struct {
	XMLName   xml.Name   `xml:"testsuite"`
	Name      string     `xml:"name,attr"`
	Hostname  string     `xml:"hostname,attr"`
	Tests     int        `xml:"tests,attr"`
	Failures  int        `xml:"failures,attr"`
	Skipped   int        `xml:"skipped,attr"`
	TimeSecs  float32    `xml:"time,attr"`
	TestCases []testCase `xml:"testcase"`
}

type testCase struct {
	Name      string   `xml:"name,attr"`
	ClassName string   `xml:"classname,attr"`
	TimeSecs  float32  `xml:"time,attr"`
	SystemOut string   `xml:"system-out"`
	Skipped   *skipped `xml:"skipped,omitempty"`
	Failure   *failure `xml:"failure,omitempty"`
}

type skipped struct {
	Message string `xml:"message,attr"`
}

type failure struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

// Write renders records as JUnit XML to filePath, creating parent
// directories as needed.
func Write(records []result.Record, filePath, hostname string) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	suite := buildSuite(records, hostname)

	out, err := xml.MarshalIndent(suite, "", "    ")
	if err != nil {
		return err
	}

	header := []byte(xml.Header)
	return os.WriteFile(filePath, append(header, out...), 0o644)
}

func buildSuite(records []result.Record, hostname string) testSuite {
	suite := testSuite{
		Name:     "lorikeet",
		Hostname: hostname,
		Tests:    len(records),
	}

	var totalSecs float32
	for _, r := range records {
		totalSecs += r.DurationMs / 1000.0

		if !r.Pass {
			if r.Skipped {
				suite.Skipped++
			} else {
				suite.Failures++
			}
		}

		tc := testCase{
			Name:      r.Name,
			ClassName: r.Description,
			TimeSecs:  r.DurationMs / 1000.0,
			SystemOut: filterInvalidChars(r.Output),
		}

		if !r.Pass {
			if r.Skipped {
				tc.Skipped = &skipped{Message: "Dependency Not Met"}
			} else {
				tc.Failure = &failure{Message: "Step failed to finish", Text: filterInvalidChars(r.Error)}
			}
		}

		suite.TestCases = append(suite.TestCases, tc)
	}

	suite.TimeSecs = totalSecs
	return suite
}

// filterInvalidChars drops characters XML 1.0 cannot encode (control
// characters other than tab/LF/CR), so a binary-ish command output never
// corrupts the document.
func filterInvalidChars(input string) string {
	out := make([]rune, 0, len(input))
	for _, ch := range input {
		switch {
		case ch >= 0x20 && ch <= 0xD7FF:
			out = append(out, ch)
		case ch >= 0xE000 && ch <= 0xFFFD:
			out = append(out, ch)
		case ch == '\t' || ch == '\n' || ch == '\r':
			out = append(out, ch)
		}
	}
	return string(out)
}
