package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/gas-alarm/internal/logic"
	"github.com/sweeney/gas-alarm/internal/mqtt"
	"github.com/sweeney/gas-alarm/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
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
	"alarmClass": func(s logic.AlarmState) string {
		switch s {
		case logic.StateActive:
			return "active"
		case logic.StateArmedOK:
			return "ok"
		default:
			return "unknown"
		}
	},
	"causes": func(c logic.Causes) string {
		switch {
		case c.Gas && c.OverTemp:
			return "gas + over temperature"
		case c.Gas:
			return "gas"
		case c.OverTemp:
			return "over temperature"
		default:
			return "-"
		}
	},
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
	"celsius":    func(c float64) string { return fmt.Sprintf("%.2f °C", c) },
	"fahrenheit": func(c float64) string { return fmt.Sprintf("%.2f °F", logic.CelsiusToFahrenheit(c)) },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Gas Alarm</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: red; font-weight: bold; }
.ok { color: green; }
.unknown { color: orange; }
.warn { color: darkorange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Gas Alarm{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Alarm</h2>
<table>
<tr><th>State</th><td id="alarm-state" class="{{alarmClass .Alarm}}">{{if .Alarm}}{{.Alarm}}{{else}}UNKNOWN{{end}}</td></tr>
<tr><th>Causes</th><td id="alarm-causes">{{causes .Causes}}</td></tr>
<tr><th>Failed attempts</th><td id="failures">{{.Failures}} / {{.Config.MaxFailures}}</td></tr>
<tr><th>Incorrect code</th><td{{if .IncorrectCode}} class="warn"{{end}}>{{yesno .IncorrectCode}}</td></tr>
<tr><th>System blocked</th><td id="locked"{{if .Locked}} class="warn"{{end}}>{{yesno .Locked}}</td></tr>
<tr><th>Console</th><td>{{.ConsoleMode}}</td></tr>
</table>

<h2>Sensors</h2>
<table>
<tr><th>Gas</th><td{{if .Gas}} class="active"{{end}}>{{if .Gas}}detected{{else}}not detected{{end}}</td></tr>
<tr><th>Temperature</th><td>{{celsius .TemperatureC}} / {{fahrenheit .TemperatureC}}</td></tr>
<tr><th>Over temperature</th><td{{if .OverTemp}} class="active"{{end}}>{{yesno .OverTemp}} (limit {{printf "%.1f" .Config.OverTempLevel}} °C)</td></tr>
<tr><th>Potentiometer</th><td>{{printf "%.2f" .Potentiometer}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Config.SerialDevice}}<tr><th>Serial console</th><td>{{.Config.SerialDevice}}</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Alarm on</th><td>{{.Counts.AlarmOn}}</td></tr>
<tr><th>Alarm off</th><td>{{.Counts.AlarmOff}}</td></tr>
<tr><th>Code accepted</th><td>{{.Counts.Accepted}}</td></tr>
<tr><th>Code rejected</th><td>{{.Counts.Rejected}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Code entry timeout</th><td>{{if eq .Config.EntryTimeoutMs 0}}none{{else}}{{.Config.EntryTimeoutMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "{{.Topic}}";
  var dot = document.getElementById("live-dot");
  var stateEl = document.getElementById("alarm-state");
  var causesEl = document.getElementById("alarm-causes");
  var failuresEl = document.getElementById("failures");
  var lockedEl = document.getElementById("locked");
  var maxFailures = {{.Config.MaxFailures}};

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function describe(c) {
    if (c.gas && c.over_temp) return "gas + over temperature";
    if (c.gas) return "gas";
    if (c.over_temp) return "over temperature";
    return "-";
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.alarm) {
        stateEl.textContent = msg.alarm.state;
        stateEl.className = msg.alarm.state === "ACTIVE" ? "active" : "ok";
        causesEl.textContent = describe(msg.alarm.causes);
        failuresEl.textContent = msg.alarm.failures + " / " + maxFailures;
        lockedEl.textContent = msg.alarm.locked ? "yes" : "no";
        lockedEl.className = msg.alarm.locked ? "warn" : "";
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// The template needs Uptime as a field, not a method.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Topic  string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Topic:    mqtt.Topic,
	}
	return indexTmpl.Execute(w, data)
}
