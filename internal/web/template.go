package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/aaronkirschen/mistFan/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"dur": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
	"until": func(deadline, now time.Time) time.Duration {
		if deadline.IsZero() || !deadline.After(now) {
			return 0
		}
		return deadline.Sub(now)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>MistFan</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>MistFan</h1>
<table>
<tr><th>Mist</th><td class="{{if .MistOn}}on{{else}}off{{end}}">{{onOff .MistOn}}</td></tr>
<tr><th>Fan</th><td class="{{if .FanPercent}}on{{else}}off{{end}}">{{.FanPercent}}%</td></tr>
{{if .Cycle}}<tr><th>Mist cycle</th><td>{{ms .Cycle.On}}ms on / {{ms .Cycle.Off}}ms off</td></tr>
{{else}}<tr><th>Mist cycle</th><td class="off">none</td></tr>
{{end}}{{with until .Deadline .Now}}<tr><th>Auto shutoff in</th><td>{{dur .}}</td></tr>
{{end}}<tr><th>Uptime</th><td>{{dur .Uptime}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
</table>
<h1>Counters</h1>
<table>
<tr><th>Gestures</th><td>{{.Counts.Gestures}}</td></tr>
<tr><th>Mist pulses</th><td>{{.Counts.MistPulses}}</td></tr>
<tr><th>Mist on / off</th><td>{{.Counts.MistOn}} / {{.Counts.MistOff}}</td></tr>
<tr><th>Cycles started</th><td>{{.Counts.CyclesStarted}}</td></tr>
<tr><th>Cycles cancelled</th><td>{{.Counts.CyclesCancelled}}</td></tr>
<tr><th>Timeouts</th><td>{{.Counts.Timeouts}}</td></tr>
</table>
<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	return indexTmpl.Execute(w, snap)
}
