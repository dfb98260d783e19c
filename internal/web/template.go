package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/lambda-display/internal/status"
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
	"css": func(s string) template.CSS {
		return template.CSS(s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Lambda Display</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.value { font-size: 1.6em; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.modal { border: 2px solid #b30000; padding: 0.5em 1em; margin: 1em 0; }
.info { border: 2px solid #e36f27; padding: 0.5em 1em; margin: 1em 0; }
.hidden { display: none; }
.close { float: right; border: none; background: none; font-size: 1.4em; cursor: pointer; }
pre { white-space: pre-wrap; font-size: 0.8em; }
</style>
</head>
<body>
<h1>Lambda Display</h1>

<table id="channels">
{{range .Channels}}<tr><th>{{.ID}}</th><td id="{{.ID}}" class="value" style="color: {{if .Visible}}{{css .Color}}{{else}}rgba(0,0,0,0){{end}}">{{.Text}}</td></tr>
{{else}}<tr><td>waiting for values…</td></tr>
{{end}}</table>

<div id="infoModal" class="info{{if not .Infos}} hidden{{end}}"><span id="infoModalInfoText">{{range $i, $l := .Infos}}{{if $i}}<br>{{end}}{{$l}}{{end}}</span></div>

<div id="errorModal" class="modal{{if not .Error}} hidden{{end}}">
<button type="button" id="errorModalClose" class="close" title="Close">&times;</button>
<p id="errorModalInfoTextDiv"{{if not .Error}} class="hidden"{{else if not .Error.Hint}} class="hidden"{{end}}><span id="errorModalInfoText">{{if .Error}}{{.Error.Hint}}{{end}}</span></p>
<p><strong id="errorModalShort">{{if .Error}}{{.Error.Exc}}{{end}}</strong></p>
<pre id="errorModalTraceback">{{if .Error}}{{.Error.Traceback}}{{end}}</pre>
</div>

<h2>Settings</h2>
<form method="post" action="/settings">
<table>
<tr><th>Decimal places</th><td>{{range $n := .Places}}<label><input type="radio" name="decimal_places" value="{{$n}}"{{if eq $n $.Preferences.DecimalPlaces}} checked{{end}}> {{$n}}</label> {{end}}</td></tr>
<tr><th>Blink on critical</th><td><select name="blinking"><option value="true"{{if .Preferences.BlinkingEnabled}} selected{{end}}>on</option><option value="false"{{if not .Preferences.BlinkingEnabled}} selected{{end}}>off</option></select></td></tr>
<tr><th>Record lambda</th><td><select name="recording"><option value="true"{{if .Recording}} selected{{end}}>on</option><option value="false"{{if not .Recording}} selected{{end}}>off</option></select></td></tr>
</table>
<button type="submit">Save</button>
</form>

<h2>System</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topic prefix</th><td>{{.Config.TopicPrefix}}</td></tr>
<tr><th>Update interval</th><td>{{.Config.UpdateIntervalMs}}ms</td></tr>
<tr><th>Frames</th><td>{{.Counts.Frames}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/history">History</a></p>
<script>
(function() {
  var TRANSPARENT = "rgba(0,0,0,0)";
  var colors = {};

  function byId(id) { return document.getElementById(id); }

  function renderFrame(channels) {
    var table = byId("channels");
    table.innerHTML = "";
    channels.forEach(function(c) {
      colors[c.id] = c.color;
      var row = table.insertRow();
      var th = document.createElement("th");
      th.textContent = c.id;
      row.appendChild(th);
      var td = row.insertCell();
      td.id = c.id;
      td.className = "value";
      td.textContent = c.text;
      td.style.color = c.color;
    });
  }

  function setVisible(id, visible) {
    var el = byId(id);
    if (el) { el.style.color = visible ? colors[id] : TRANSPARENT; }
  }

  function showInfos(lines) {
    var box = byId("infoModal");
    var text = byId("infoModalInfoText");
    text.textContent = "";
    (lines || []).forEach(function(l, i) {
      if (i) { text.appendChild(document.createElement("br")); }
      text.appendChild(document.createTextNode(l));
    });
    box.className = lines && lines.length ? "info" : "info hidden";
  }

  function showError(err) {
    var box = byId("errorModal");
    if (!err) { box.className = "modal hidden"; return; }
    byId("errorModalInfoText").textContent = err.hint || "";
    byId("errorModalInfoTextDiv").className = err.hint ? "" : "hidden";
    byId("errorModalShort").textContent = err.exc;
    byId("errorModalTraceback").textContent = err.traceback;
    box.className = "modal";
  }

  byId("errorModalClose").onclick = function() {
    fetch("/error/dismiss", {method: "POST"});
  };

  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onmessage = function(ev) {
      try {
        var m = JSON.parse(ev.data);
        if (m.type === "frame") { renderFrame(m.channels || []); }
        else if (m.type === "blink") { setVisible(m.channel, m.visible); }
        else if (m.type === "info") { showInfos(m.lines); }
        else if (m.type === "error") { showError(m.error); }
      } catch (e) {}
    };
    ws.onclose = function() { setTimeout(connect, 5000); };
  }
  connect();
})();
</script>
</body>
</html>
`

const historyHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Lambda Display History</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
</style>
</head>
<body>
<h1>History</h1>
<form id="range">
<label>From <input type="datetime-local" name="start_time" required></label>
<label>To <input type="datetime-local" name="end_time" required></label>
<select name="kind"><option value="lambdadata">lambda</option><option value="tempdata">temperature</option></select>
<button type="submit">Show</button>
</form>
<p id="message"></p>
<table><thead><tr><th>Time</th><th>Sensor</th><th>Value</th></tr></thead><tbody id="rows"></tbody></table>
<p><a href="/">Display</a></p>
<script>
document.getElementById("range").onsubmit = function(ev) {
  ev.preventDefault();
  var f = ev.target;
  var q = "?start_time=" + encodeURIComponent(f.start_time.value) + "&end_time=" + encodeURIComponent(f.end_time.value);
  fetch("/" + f.kind.value + q).then(function(r) { return r.json(); }).then(function(data) {
    var rows = document.getElementById("rows");
    var msg = document.getElementById("message");
    rows.innerHTML = "";
    if (!Array.isArray(data)) { msg.textContent = data.message; return; }
    msg.textContent = data.length + " readings";
    data.forEach(function(d) {
      var row = rows.insertRow();
      row.insertCell().textContent = d.timestamp;
      row.insertCell().textContent = d.sensor_id + 1;
      row.insertCell().textContent = d.value;
    });
  });
};
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		Channels []status.ChannelJSON
		Places   []int
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Channels: snap.Channels(),
		Places:   []int{0, 1, 2, 3},
	}
	indexTmpl.Execute(w, data)
}
