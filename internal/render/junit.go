package render

import (
	"encoding/xml"

	"github.com/adamcooper1386/bintest/internal/result"
)

type junitTestsuites struct {
	XMLName    xml.Name        `xml:"testsuites"`
	Testsuites []junitTestsuite `xml:"testsuite"`
}

type junitTestsuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	TimeMs    int64           `xml:"time,attr"`
	Testcases []junitTestcase `xml:"testcase"`
}

type junitTestcase struct {
	Name      string        `xml:"name,attr"`
	TimeMs    int64         `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure,omitempty"`
	Error     *junitMessage `xml:"error,omitempty"`
	Skipped   *junitMessage `xml:"skipped,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

// JUnit renders a suite result as JUnit XML, one testsuite per file.
func JUnit(suite result.Suite) ([]byte, error) {
	doc := junitTestsuites{}

	for _, f := range suite.Files {
		ts := junitTestsuite{Name: f.Path, TimeMs: f.DurationMs}
		for _, tst := range f.Tests {
			ts.Tests++
			tc := junitTestcase{Name: tst.Name, TimeMs: tst.DurationMs}
			switch tst.Verdict {
			case result.Failed:
				ts.Failures++
				tc.Failure = &junitMessage{Message: "assertion failed", Text: tst.Error}
			case result.Errored:
				ts.Errors++
				tc.Error = &junitMessage{Message: "error", Text: tst.Error}
			case result.Skipped:
				ts.Skipped++
				tc.Skipped = &junitMessage{Message: tst.SkipReason}
			}
			ts.Testcases = append(ts.Testcases, tc)
		}
		doc.Testsuites = append(doc.Testsuites, ts)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
