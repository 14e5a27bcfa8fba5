package sample

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kisy/appmole/model"
)

// A data line looks like
//
//	12:04:31.512345 Google Chrome He.3381   1822043   190445  ...
//
// The lazy name group plus the mandatory whitespace after the pid binds the
// last ".<digits>" of the identity field, so names may contain dots.
var lineRegex = regexp.MustCompile(`^\s*(\d{1,2}:\d{2}:\d{2}(?:\.\d+)?)\s+(.+?)\.(\d+)\s+(\d+)\s+(\d+)(?:\s|$)`)

// ParseLine parses one line of a per-process report. Header, blank and
// malformed lines return false.
func ParseLine(line string) (model.RawProcessSample, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "time") {
		return model.RawProcessSample{}, false
	}

	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return model.RawProcessSample{}, false
	}

	name := m[2]
	pid, err := strconv.ParseInt(m[3], 10, 32)
	if err != nil {
		return model.RawProcessSample{}, false
	}
	in, err := strconv.ParseUint(m[4], 10, 64)
	if err != nil {
		return model.RawProcessSample{}, false
	}
	out, err := strconv.ParseUint(m[5], 10, 64)
	if err != nil {
		return model.RawProcessSample{}, false
	}

	return model.NewRawProcessSample(name, int32(pid), in, out), true
}

// ParseOutput parses a whole report, dropping lines that do not parse.
func ParseOutput(output string) []model.RawProcessSample {
	lines := strings.Split(output, "\n")
	samples := make([]model.RawProcessSample, 0, len(lines))
	for _, line := range lines {
		if s, ok := ParseLine(line); ok {
			samples = append(samples, s)
		}
	}
	return samples
}
