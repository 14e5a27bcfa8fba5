package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kisy/appmole/model"
)

const namespace = "appmole"

// Source is the read side of the aggregator. Stats must return a view taken
// from a single tick.
type Source interface {
	Stats(n int) model.StatsView
}

// Exporter is a prometheus.Collector over the live attribution state.
// Values are read at scrape time, so nothing is cached between scrapes.
type Exporter struct {
	src Source

	appSpeed  *prometheus.Desc
	appTotal  *prometheus.Desc
	ifSpeed   *prometheus.Desc
	ifTotal   *prometheus.Desc
	activeApp *prometheus.Desc
}

func NewExporter(src Source) *Exporter {
	return &Exporter{
		src: src,
		appSpeed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "app", "speed_bytes"),
			"Current traffic rate of an application in bytes per second.",
			[]string{"app", "display_name"}, nil,
		),
		appTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "app", "total_bytes"),
			"Cumulative bytes attributed to an application.",
			[]string{"app", "display_name"}, nil,
		),
		ifSpeed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "interface", "speed_bytes"),
			"Interface throughput in bytes per second.",
			[]string{"interface", "direction"}, nil,
		),
		ifTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "interface", "total_bytes"),
			"Bytes seen on the interface since start or the last reset.",
			[]string{"interface", "direction"}, nil,
		),
		activeApp: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "active_apps"),
			"Applications that moved bytes in the last tick.",
			nil, nil,
		),
	}
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.appSpeed
	ch <- e.appTotal
	ch <- e.ifSpeed
	ch <- e.ifTotal
	ch <- e.activeApp
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	view := e.src.Stats(0)
	for _, app := range view.TopSpeed {
		ch <- prometheus.MustNewConstMetric(e.appSpeed, prometheus.GaugeValue, app.Speed, app.Name, app.DisplayName)
	}
	for _, app := range view.TopUsage {
		ch <- prometheus.MustNewConstMetric(e.appTotal, prometheus.CounterValue, float64(app.TotalBytes), app.Name, app.DisplayName)
	}

	gs := view.Global
	ch <- prometheus.MustNewConstMetric(e.activeApp, prometheus.GaugeValue, float64(gs.Apps))
	if gs.Interface == "" {
		return
	}
	ch <- prometheus.MustNewConstMetric(e.ifSpeed, prometheus.GaugeValue, float64(gs.DownloadSpeed), gs.Interface, "download")
	ch <- prometheus.MustNewConstMetric(e.ifSpeed, prometheus.GaugeValue, float64(gs.UploadSpeed), gs.Interface, "upload")
	ch <- prometheus.MustNewConstMetric(e.ifTotal, prometheus.CounterValue, float64(gs.TotalDownload), gs.Interface, "download")
	ch <- prometheus.MustNewConstMetric(e.ifTotal, prometheus.CounterValue, float64(gs.TotalUpload), gs.Interface, "upload")
}
