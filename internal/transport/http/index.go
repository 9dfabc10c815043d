package httpserver

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>JOI Energy</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; max-width: 48rem; }
code { background: #f3f3f3; padding: 0 .25rem; }
li { margin: .25rem 0; }
</style>
</head>
<body>
<h1>JOI Energy pricing</h1>
<ul>
<li><code>POST /readings/store</code></li>
<li><code>GET /readings/read/{smartMeterId}?page_size=&amp;page_token=</code></li>
<li><code>GET /price-plans</code></li>
<li><code>GET /price-plans/compare-all/{smartMeterId}</code></li>
<li><code>GET /price-plans/recommend/{smartMeterId}?limit=</code></li>
<li><code>GET /{smartMeterId}/last-week-usage?window=168h</code></li>
<li><code>GET /healthz</code>, <code>GET /metrics</code></li>
</ul>
</body>
</html>
`
