package http

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cyclecare/internal/domain/analytics"
)

type navLink struct {
	Href   string
	Label  string
	Scroll string
}

var trackerNav = []navLink{
	{Href: "#overview", Label: "Overview"},
	{Href: "#charts", Label: "Charts"},
	{Href: "#insights", Label: "Insights"},
	{Href: "/tracker/nearby", Label: "Nearby care"},
	{Href: "/auth/logout", Label: "Log out"},
}

type analyticsPage struct {
	Profile   string
	Nav       []navLink
	Dashboard analytics.Dashboard
	Payload   template.JS
	Charts    template.JS
}

type nearbyPage struct {
	Nav         []navLink
	DefaultType string
}

type pageRenderer struct {
	analytics *template.Template
	nearby    *template.Template
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{
		analytics: template.Must(template.New("analytics").Parse(analyticsTemplate)),
		nearby:    template.Must(template.New("nearby").Parse(nearbyTemplate)),
	}
}

// AnalyticsPage serves the dashboard page with the chart payload embedded for the client.
func (h *Handler) AnalyticsPage(c *gin.Context) {
	id := profileID(c)
	dash, err := h.analyticsSvc.RenderProfile(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	charts, err := json.Marshal(dash.Charts)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "render_failed", "failed to encode charts", err))
		return
	}
	data := analyticsPage{
		Profile:   id,
		Nav:       resolveNav(trackerNav),
		Dashboard: dash,
		Payload:   embedJSON(dash.Payload),
		Charts:    embedJSON(charts),
	}
	h.renderPage(c, h.pages.analytics, data)
}

// NearbyPage serves the facility locator page shell.
func (h *Handler) NearbyPage(c *gin.Context) {
	h.renderPage(c, h.pages.nearby, nearbyPage{Nav: resolveNav(trackerNav), DefaultType: "hospital"})
}

func (h *Handler) renderPage(c *gin.Context, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "render_failed", "failed to render page", err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func resolveNav(links []navLink) []navLink {
	out := make([]navLink, len(links))
	for i, l := range links {
		out[i] = l
		if target, ok := analytics.ScrollTarget(l.Href); ok {
			out[i].Scroll = target
		}
	}
	return out
}

// embedJSON makes a JSON document safe inside a script element.
func embedJSON(raw []byte) template.JS {
	if len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
		return template.JS("null")
	}
	var buf bytes.Buffer
	json.HTMLEscape(&buf, raw)
	return template.JS(buf.String())
}

const analyticsTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Cycle analytics</title>
</head>
<body>
<nav>
{{- range .Nav}}
  <a href="{{.Href}}"{{if .Scroll}} data-scroll-target="{{.Scroll}}"{{end}}>{{.Label}}</a>
{{- end}}
</nav>
<main id="overview" data-profile="{{.Profile}}">
{{- with .Dashboard.Banner}}
  <div class="alert alert-danger" role="alert"><strong>{{.Title}}</strong> {{.Message}}<br><small>{{.Detail}}</small></div>
{{- end}}
{{- if .Dashboard.Notice}}
  <p class="notice">{{.Dashboard.Notice}}</p>
{{- end}}
  <section id="charts">
{{- range .Dashboard.Charts}}
    <canvas id="{{.CanvasID}}" data-kind="{{.Kind}}" data-placeholder="{{.Placeholder}}"></canvas>
{{- end}}
  </section>
  <section id="insights">
{{- range .Dashboard.Issues}}
    <p class="issue">{{.}}</p>
{{- end}}
  </section>
{{- with .Dashboard.Debug}}
  <div id="debug-info">
    <pre>{{.Cycle}}</pre>
    <pre>{{.Symptoms}}</pre>
  </div>
{{- end}}
</main>
<script id="chart-data" type="application/json">{{.Payload}}</script>
<script id="chart-configs" type="application/json">{{.Charts}}</script>
</body>
</html>
`

const nearbyTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Nearby medical facilities</title>
</head>
<body>
<nav>
{{- range .Nav}}
  <a href="{{.Href}}"{{if .Scroll}} data-scroll-target="{{.Scroll}}"{{end}}>{{.Label}}</a>
{{- end}}
</nav>
<main data-default-type="{{.DefaultType}}" data-sessions="/api/v1/locator/sessions">
  <select id="facility-type">
    <option value="hospital">Hospitals</option>
    <option value="clinic">Clinics</option>
    <option value="pharmacy">Pharmacies</option>
    <option value="medical_store">Medical stores</option>
  </select>
  <div id="map"></div>
  <div id="places-list"></div>
  <div id="place-modal" hidden></div>
</main>
</body>
</html>
`
