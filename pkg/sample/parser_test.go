package sample

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisy/appmole/model"
)

const report = `time                                   bytes_in       bytes_out
12:04:31.512345 launchd.1                     0               0
12:04:31.512400 Google Chrome He.3381         1822043         190445     0     0

12:04:31.512500 co.app.Name.4321              100             200        17.5  extra
not a data line
12:04:31.512600 broken.77                     12              x
`

func TestParseLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want model.RawProcessSample
		ok   bool
	}{
		{
			name: "simple",
			line: "12:04:31.512345 Safari.812 10 20",
			want: model.NewRawProcessSample("Safari", 812, 10, 20),
			ok:   true,
		},
		{
			name: "name with spaces and trailing columns",
			line: "12:04:31.512345 Google Chrome He.3381   1822043   190445  0 0",
			want: model.NewRawProcessSample("Google Chrome He", 3381, 1822043, 190445),
			ok:   true,
		},
		{
			name: "embedded periods bind the last pid",
			line: "12:04:31.512345 co.app.Name.4321 100 200",
			want: model.NewRawProcessSample("co.app.Name", 4321, 100, 200),
			ok:   true,
		},
		{
			name: "tabs and CRLF",
			line: "12:04:31.5\tnode.55\t7\t8\r",
			want: model.NewRawProcessSample("node", 55, 7, 8),
			ok:   true,
		},
		{name: "header", line: "time  bytes_in  bytes_out"},
		{name: "blank", line: ""},
		{name: "whitespace only", line: "   \t"},
		{name: "no pid", line: "12:04:31.5 Safari 10 20"},
		{name: "non numeric bytes", line: "12:04:31.5 Safari.1 10 2x"},
		{name: "missing bytes out", line: "12:04:31.5 Safari.1 10"},
		{name: "no timestamp", line: "Safari.1 10 20"},
		{name: "pid overflow", line: "12:04:31.5 Safari.99999999999 10 20"},
		{name: "bytes overflow", line: "12:04:31.5 Safari.1 99999999999999999999999 20"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLine(tc.line)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestParseOutput(t *testing.T) {
	samples := ParseOutput(report)
	require.Len(t, samples, 3)

	assert.Equal(t, "launchd.1", samples[0].Key)
	assert.Equal(t, "Google Chrome He", samples[1].Name)
	assert.Equal(t, int32(3381), samples[1].PID)
	assert.Equal(t, uint64(1822043+190445), samples[1].TotalBytes())
	assert.Equal(t, int32(4321), samples[2].PID)
	assert.Equal(t, "co.app.Name.4321", samples[2].Key)
}

func TestParseOutputEmpty(t *testing.T) {
	assert.Empty(t, ParseOutput(""))
	assert.Empty(t, ParseOutput("time bytes_in bytes_out\n\n"))
}

func TestNettopSamplerMissingBinary(t *testing.T) {
	s := NewNettopSampler("/nonexistent/nettop", 0)
	samples, err := s.Sample(context.Background())
	require.Error(t, err)
	assert.Nil(t, samples)
}

func TestSamplerFunc(t *testing.T) {
	want := errors.New("boom")
	var s Sampler = SamplerFunc(func(ctx context.Context) ([]model.RawProcessSample, error) {
		return nil, want
	})
	_, err := s.Sample(context.Background())
	assert.ErrorIs(t, err, want)
}
