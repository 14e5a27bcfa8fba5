package model

import (
	"strconv"
	"time"
)

// RawProcessSample is one data line of a per-process traffic report.
type RawProcessSample struct {
	Key      string `json:"key"` // Name.PID, unique within one report
	Name     string `json:"name"`
	PID      int32  `json:"pid"`
	BytesIn  uint64 `json:"bytes_in"`
	BytesOut uint64 `json:"bytes_out"`
}

func NewRawProcessSample(name string, pid int32, in, out uint64) RawProcessSample {
	return RawProcessSample{
		Key:      name + "." + strconv.FormatInt(int64(pid), 10),
		Name:     name,
		PID:      pid,
		BytesIn:  in,
		BytesOut: out,
	}
}

func (s RawProcessSample) TotalBytes() uint64 {
	return s.BytesIn + s.BytesOut
}

// AppStats contains the current view of one logical application
type AppStats struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Speed       float64 `json:"speed"` // Bytes/sec
	TotalBytes  uint64  `json:"total_bytes"`
	PID         *int32  `json:"pid,omitempty"`
}

type GlobalStats struct {
	Interface     string `json:"interface"`
	TotalDownload uint64 `json:"total_download"`
	TotalUpload   uint64 `json:"total_upload"`
	DownloadSpeed uint64 `json:"download_speed"` // Bytes/sec
	UploadSpeed   uint64 `json:"upload_speed"`   // Bytes/sec
	Apps          int    `json:"apps"`
}

// Checkpoint is the persisted form of cumulative totals.
type Checkpoint struct {
	TotalBytes    map[string]uint64
	TotalUpload   uint64
	TotalDownload uint64
	LastUpdate    time.Time
}

// StatsView is one consistent read of the aggregator: both rankings, the
// interface figures and the tick times all come from the same tick.
type StatsView struct {
	StartTime time.Time   `json:"start_time"`
	LastTick  time.Time   `json:"last_tick"`
	Global    GlobalStats `json:"global"`
	TopSpeed  []AppStats  `json:"top_speed"`
	TopUsage  []AppStats  `json:"top_usage"`
}
