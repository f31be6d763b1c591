package static

import (
	"html/template"

	"contract-admin/internal/forms"
)

const pageTemplate = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; }
    .status { padding: .75rem; border-radius: .25rem; }
    .status-connected { background: #e6f4ea; }
    .status-wrong_network, .status-failed, .status-no_wallet { background: #fdecea; }
    .result { white-space: pre-wrap; margin-top: .5rem; }
    .result-success { color: #1e7e34; } .result-danger { color: #c82333; } .result-info { color: #0c5460; }
    .events td { padding: .25rem .5rem; font-size: .875rem; vertical-align: top; }
  </style>
</head>
<body>
  <h3>{{.Title}}</h3>
  <p>Contract <code>{{.Contract}}</code> on {{.Network}} (ID: {{.ChainId}})</p>
  <div id="status" class="status status-{{.State.Status}}">
    <span id="status-message">{{.State.Message}}</span>
    {{- with .State.Action}}
    <form method="post" action="{{$.ActionPath}}" style="display:inline">
      <button type="submit" id="status-action">{{.}}</button>
    </form>
    {{- end}}
  </div>
  {{template "forms" .Model}}
  {{- if .EventLog}}
  <section class="events">
    <h5>Recent Contract Events</h5>
    <table>
      <thead><tr><th>Event</th><th>Block</th><th>Transaction</th><th>Arguments</th></tr></thead>
      <tbody id="events">
      {{- range .Events}}
        <tr><td>{{.Name}}</td><td>{{.BlockNumber}}</td><td><code>{{.TxHash.Hex}}</code></td><td>{{range $k, $v := .Args}}{{$k}}={{$v}} {{end}}</td></tr>
      {{- else}}
        <tr id="events-empty"><td colspan="4">No events recorded yet.</td></tr>
      {{- end}}
      </tbody>
    </table>
  </section>
  {{- end}}
  <script>
    (function () {
      var proto = location.protocol === "https:" ? "wss://" : "ws://";
      var sock = new WebSocket(proto + location.host + "/ws/status");
      sock.onmessage = function (ev) {
        var msg = JSON.parse(ev.data);
        if (msg.type === "connection") {
          document.getElementById("status-message").textContent = msg.data.message;
          document.getElementById("status").className = "status status-" + msg.data.status;
        } else if (msg.type === "panel") {
          var el = document.getElementById("result-" + msg.function);
          if (!el) return;
          el.className = "result result-" + msg.data.tone;
          el.textContent = (msg.data.title ? msg.data.title + " " : "") + msg.data.text;
          var btn = el.parentNode.querySelector("button[type=submit]");
          if (btn) btn.disabled = !!msg.data.busy;
        } else if (msg.type === "event") {
          var body = document.getElementById("events");
          if (!body) return;
          var empty = document.getElementById("events-empty");
          if (empty) empty.remove();
          var row = body.insertRow(0);
          var args = Object.keys(msg.data.args || {}).sort().map(function (k) { return k + "=" + msg.data.args[k]; }).join(" ");
          [msg.data.name, msg.data.blockNumber, msg.data.txHash, args].forEach(function (text) {
            row.insertCell(-1).textContent = text;
          });
          while (body.rows.length > {{.RecentLimit}}) body.deleteRow(-1);
        }
      };
    })();
  </script>
</body>
</html>
{{end}}`

// Templates returns the page template together with the forms fragment.
func Templates() *template.Template {
	return template.Must(forms.Templates().New("page").Parse(pageTemplate))
}
