package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisy/appmole/model"
)

type fakeSource struct {
	speed []model.AppStats
	total []model.AppStats
	gs    model.GlobalStats
}

func (f fakeSource) Stats(n int) model.StatsView {
	return model.StatsView{Global: f.gs, TopSpeed: f.speed, TopUsage: f.total}
}

func TestExporterAppSeries(t *testing.T) {
	src := fakeSource{
		speed: []model.AppStats{{Name: "Chrome", DisplayName: "Google Chrome", Speed: 2048}},
		total: []model.AppStats{
			{Name: "Chrome", DisplayName: "Google Chrome", TotalBytes: 5000},
			{Name: "Zoom", DisplayName: "Zoom", TotalBytes: 10},
		},
		gs: model.GlobalStats{Apps: 1},
	}
	e := NewExporter(src)

	// interface series are skipped without a counter reader
	assert.Equal(t, 4, testutil.CollectAndCount(e))

	want := `
# HELP appmole_app_total_bytes Cumulative bytes attributed to an application.
# TYPE appmole_app_total_bytes counter
appmole_app_total_bytes{app="Chrome",display_name="Google Chrome"} 5000
appmole_app_total_bytes{app="Zoom",display_name="Zoom"} 10
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(want), "appmole_app_total_bytes"))
}

func TestExporterInterfaceSeries(t *testing.T) {
	e := NewExporter(fakeSource{gs: model.GlobalStats{
		Interface:     "en0",
		DownloadSpeed: 300,
		UploadSpeed:   20,
		TotalDownload: 9000,
		TotalUpload:   800,
	}})

	assert.Equal(t, 4, testutil.CollectAndCount(e, "appmole_interface_speed_bytes", "appmole_interface_total_bytes"))

	want := `
# HELP appmole_interface_speed_bytes Interface throughput in bytes per second.
# TYPE appmole_interface_speed_bytes gauge
appmole_interface_speed_bytes{direction="download",interface="en0"} 300
appmole_interface_speed_bytes{direction="upload",interface="en0"} 20
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(want), "appmole_interface_speed_bytes"))
}
