package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleOverview(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(overviewHTML))
}

// overviewHTML is a single page that reads /api/trends and /api/market.
const overviewHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>News Sentiment Overview</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; }
        .header { background: linear-gradient(135deg, #1e293b, #334155); padding: 1.5rem 2rem; border-bottom: 1px solid #475569; display: flex; justify-content: space-between; align-items: center; }
        .header h1 { font-size: 1.5rem; color: #38bdf8; }
        .mood { padding: 0.5rem 1rem; border-radius: 9999px; font-size: 0.875rem; font-weight: 600; background: #334155; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 1rem; padding: 2rem; }
        .card { background: #1e293b; border: 1px solid #334155; border-radius: 12px; padding: 1.5rem; }
        .card .label { font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; margin-bottom: 0.5rem; }
        .card .value { font-size: 2rem; font-weight: 700; }
        .positive { color: #4ade80; } .negative { color: #f87171; } .neutral { color: #cbd5e1; }
        table { width: calc(100% - 4rem); margin: 0 2rem 2rem; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #334155; }
        th { color: #94a3b8; font-size: 0.75rem; text-transform: uppercase; }
        .footer { text-align: center; padding: 1rem; color: #475569; font-size: 0.75rem; }
    </style>
</head>
<body>
    <div class="header">
        <h1>News Sentiment Overview</h1>
        <span class="mood" id="mood">loading</span>
    </div>
    <div class="grid">
        <div class="card"><div class="label">Articles</div><div class="value" id="total">0</div></div>
        <div class="card"><div class="label">Overall Sentiment</div><div class="value" id="overall">0.000</div></div>
        <div class="card"><div class="label">Positive</div><div class="value positive" id="positive">0</div></div>
        <div class="card"><div class="label">Neutral</div><div class="value neutral" id="neutral">0</div></div>
        <div class="card"><div class="label">Negative</div><div class="value negative" id="negative">0</div></div>
        <div class="card"><div class="label">Avg Length</div><div class="value" id="length">0</div></div>
    </div>
    <table>
        <thead><tr><th>Source</th><th>Articles</th><th>Mean Sentiment</th></tr></thead>
        <tbody id="sources"></tbody>
    </table>
    <div class="footer">Refreshes every 30s</div>
    <script>
        function tone(v) { return v > 0.1 ? 'positive' : (v < -0.1 ? 'negative' : 'neutral'); }
        async function refresh() {
            try {
                const t = await (await fetch('/api/trends')).json();
                const set = (id, v) => { document.getElementById(id).textContent = v; };
                set('total', Number(t.total_articles || 0).toLocaleString());
                set('overall', (t.overall_sentiment || 0).toFixed(3));
                document.getElementById('overall').className = 'value ' + tone(t.overall_sentiment || 0);
                const d = t.sentiment_distribution || {};
                ['positive', 'neutral', 'negative'].forEach(k => set(k, d[k] || 0));
                set('length', Math.round(t.avg_content_length || 0).toLocaleString());
                const counts = {};
                (t.source_counts || []).forEach(c => { counts[c.name] = c.count; });
                document.getElementById('sources').innerHTML = (t.source_sentiment || []).map(m =>
                    '<tr><td>' + m.name.toUpperCase() + '</td><td>' + (counts[m.name] || 0) +
                    '</td><td class="' + tone(m.mean) + '">' + m.mean.toFixed(3) + '</td></tr>').join('');
                const m = await fetch('/api/market');
                set('mood', m.ok ? (await m.json()).classification : 'no market data');
            } catch (e) {}
        }
        setInterval(refresh, 30000);
        refresh();
    </script>
</body>
</html>`
