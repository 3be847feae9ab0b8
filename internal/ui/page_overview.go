package ui

import (
	"strconv"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"posgate/internal/domain"
)

type overviewData struct {
	Users       int
	Active      int
	Locked      int
	Groups      int
	Permissions int
}

func overviewPage(p domain.ContextPrincipal, d overviewData) gomponents.Node {
	return appPage(
		"Overview",
		"home",
		p,
		html.Div(
			html.Class("grid"),
			statCard("Users", strconv.Itoa(d.Users), "Registered accounts", "/ui/users"),
			statCard("Active", strconv.Itoa(d.Active), "Accounts that can sign in", "/ui/users"),
			statCard("Locked", strconv.Itoa(d.Locked), "Accounts locked out", "/ui/users"),
			statCard("Groups", strconv.Itoa(d.Groups), "Permission groups", "/ui/groups"),
			statCard("Permissions", strconv.Itoa(d.Permissions), "Registered permissions", "/ui/permissions"),
		),
		html.Div(
			html.Class("card"),
			html.H2(gomponents.Text("Audit log")),
			html.P(html.Class("muted"), gomponents.Text("Every directory change, sign-in and authorization check, newest first.")),
			html.A(html.Href("/ui/audit"), gomponents.Text("Open audit log ->")),
		),
	)
}

func statCard(title, value, description, href string) gomponents.Node {
	return html.Div(
		html.Class("card stat"),
		html.H2(gomponents.Text(title)),
		html.P(html.Class("stat-value"), gomponents.Text(value)),
		html.P(html.Class("muted"), gomponents.Text(description)),
		html.A(html.Href(href), gomponents.Text("View ->")),
	)
}
