package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/kisy/appmole/model"
)

const DefaultServer = "http://127.0.0.1:8080"

type Config struct {
	Server  string
	Command string // top, usage or reset
	N       int
	Timeout time.Duration
}

func Run(cfg Config, w io.Writer) error {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	httpc := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Command {
	case "top", "":
		apps, err := fetchApps(httpc, cfg, "/api/apps/top")
		if err != nil {
			return err
		}
		renderApps(w, apps)
	case "usage":
		apps, err := fetchApps(httpc, cfg, "/api/apps/usage")
		if err != nil {
			return err
		}
		renderApps(w, apps)
	case "reset":
		if err := reset(httpc, cfg); err != nil {
			return err
		}
		fmt.Fprintln(w, "Totals reset")
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
	return nil
}

func endpoint(cfg Config, path string) (string, error) {
	u, err := url.Parse(cfg.Server)
	if err != nil {
		return "", fmt.Errorf("invalid server %q: %w", cfg.Server, err)
	}
	u.Path = path
	if cfg.N > 0 {
		q := u.Query()
		q.Set("n", strconv.Itoa(cfg.N))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func fetchApps(httpc *http.Client, cfg Config, path string) ([]model.AppStats, error) {
	target, err := endpoint(cfg, path)
	if err != nil {
		return nil, err
	}
	resp, err := httpc.Get(target)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var apps []model.AppStats
	if err := json.NewDecoder(resp.Body).Decode(&apps); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return apps, nil
}

func reset(httpc *http.Client, cfg Config) error {
	target, err := endpoint(Config{Server: cfg.Server}, "/api/reset")
	if err != nil {
		return err
	}
	resp, err := httpc.Post(target, "application/json", nil)
	if err != nil {
		return fmt.Errorf("request reset: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode/100 == 2 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("server returned %s: %s", resp.Status, string(b))
}

func renderApps(w io.Writer, apps []model.AppStats) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"App", "PID", "Speed", "Total"})
	t.SetAutoWrapText(false)
	t.SetRowLine(false)

	for _, a := range apps {
		name := a.DisplayName
		if name == "" {
			name = a.Name
		}
		pid := "-"
		if a.PID != nil {
			pid = strconv.Itoa(int(*a.PID))
		}
		t.Append([]string{name, pid, FormatSpeed(a.Speed), humanize.IBytes(a.TotalBytes)})
	}
	t.Render()
}

// FormatSpeed renders bytes per second with binary units.
func FormatSpeed(bps float64) string {
	if bps < 0 {
		bps = 0
	}
	return humanize.IBytes(uint64(bps)) + "/s"
}
