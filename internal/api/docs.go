package api

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>Quantora Dashboard Gateway</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; position: relative;">
  <a href="/docs/events" style="
    position: fixed;
    top: 12px;
    right: 16px;
    z-index: 9999;
    background: #161b22;
    border: 1px solid #30363d;
    border-radius: 6px;
    color: #58a6ff;
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
    font-size: 12px;
    font-weight: 500;
    padding: 5px 12px;
    text-decoration: none;
  ">Event Stream Docs</a>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

const eventsDocsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Event Stream | Quantora Dashboard Gateway</title>
  <style>
    body { margin: 0; padding: 32px; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
           font-size: 14px; line-height: 1.65; background: #0d1117; color: #c9d1d9; }
    a { color: #58a6ff; text-decoration: none; }
    code, pre { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 13px; }
    pre { background: #161b22; border: 1px solid #30363d; border-radius: 6px; padding: 12px 16px; overflow-x: auto; }
    table { border-collapse: collapse; margin: 16px 0; }
    th, td { border: 1px solid #30363d; padding: 6px 12px; text-align: left; }
    th { background: #161b22; }
  </style>
</head>
<body>
  <p><a href="/docs">&larr; REST API</a></p>
  <h1>Event Stream</h1>
  <p><code>GET /events</code> is a server-sent event stream. Filter with
  <code>?kinds=live,status</code>; omit it to receive everything.</p>
  <table>
    <tr><th>event</th><th>data</th></tr>
    <tr><td><code>live</code></td><td>Raw backend frame: <code>connection_established</code>, <code>pattern_discovered</code>, <code>ai_performance_update</code>, <code>system_health_update</code>.</td></tr>
    <tr><td><code>status</code></td><td>Live stream state change: <code>{"status","label","at"}</code>.</td></tr>
    <tr><td><code>connection</code></td><td>Backend availability flip: <code>{"isConnected","isDemoMode"}</code>.</td></tr>
    <tr><td><code>surface</code></td><td>A polled surface refreshed: name, endpoint and the latest response.</td></tr>
  </table>
  <pre>const es = new EventSource("/events?kinds=live,connection");
es.addEventListener("live", (e) =&gt; console.log(JSON.parse(e.data)));
es.addEventListener("connection", (e) =&gt; console.log(JSON.parse(e.data)));</pre>
</body>
</html>`
