package ui

import (
	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"posgate/internal/domain"
)

type auditRowData struct {
	Time      string
	Principal string
	Action    string
	Target    string
	Status    string
	Error     string
	Filter    string
}

func auditPage(p domain.ContextPrincipal, rows []auditRowData, pageReq domain.PageRequest, total int64) gomponents.Node {
	trs := make([]gomponents.Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		trs = append(trs, html.Tr(
			data.Show(containsExpr(row.Filter)),
			html.Td(gomponents.Text(row.Time)),
			html.Td(gomponents.Text(row.Principal)),
			html.Td(gomponents.Text(row.Action)),
			html.Td(gomponents.Text(row.Target)),
			html.Td(auditStatusBadge(row.Status)),
			html.Td(gomponents.Text(row.Error)),
		))
	}

	return appPage(
		"Audit",
		"audit",
		p,
		html.Div(
			data.Signals(map[string]any{"q": ""}),
			filterInput("Filter by principal, action or status"),
			html.Div(
				html.Class("card table-wrap"),
				html.Table(
					html.THead(html.Tr(
						html.Th(gomponents.Text("Time")),
						html.Th(gomponents.Text("Principal")),
						html.Th(gomponents.Text("Action")),
						html.Th(gomponents.Text("Target")),
						html.Th(gomponents.Text("Status")),
						html.Th(gomponents.Text("Error")),
					)),
					html.TBody(gomponents.Group(trs)),
				),
			),
		),
		paginationCard("/ui/audit", pageReq, total),
	)
}

func auditStatusBadge(status string) gomponents.Node {
	class := "badge"
	switch status {
	case "ALLOWED":
		class = "badge active"
	case "DENIED":
		class = "badge locked"
	case "ERROR":
		class = "badge inactive"
	}
	return html.Span(html.Class(class), gomponents.Text(status))
}
