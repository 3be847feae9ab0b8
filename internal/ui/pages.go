package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"posgate/internal/domain"
)

const datastarCDN = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

type navItem struct {
	Label string
	Href  string
	Key   string
}

var navItems = []navItem{
	{Label: "Overview", Href: "/ui", Key: "home"},
	{Label: "Users", Href: "/ui/users", Key: "users"},
	{Label: "Groups", Href: "/ui/groups", Key: "groups"},
	{Label: "Permissions", Href: "/ui/permissions", Key: "permissions"},
	{Label: "Audit", Href: "/ui/audit", Key: "audit"},
}

// pageHead is the shared <head> of every UI page. Interactive pages
// additionally pull in the datastar bundle for the quick filters.
func pageHead(title string, interactive bool) gomponents.Node {
	nodes := []gomponents.Node{
		html.Meta(html.Charset("utf-8")),
		html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
		html.TitleEl(gomponents.Text(title + " | posgate")),
		html.Link(html.Rel("stylesheet"), html.Href("/ui/static/app.css")),
	}
	if interactive {
		nodes = append(nodes, html.Script(html.Type("module"), html.Src(datastarCDN)))
	}
	return html.Head(nodes...)
}

func topbar(principal domain.ContextPrincipal) gomponents.Node {
	who := principal.Name
	if who == "" {
		who = "unknown"
	}
	if principal.IsAdmin {
		who += " (admin)"
	}
	return html.Div(
		html.Class("topbar"),
		html.Div(
			html.Strong(gomponents.Text("posgate")),
			html.P(html.Class("muted"), gomponents.Text("Point-of-sale authorization")),
		),
		html.Div(
			html.P(html.Class("muted"), gomponents.Text("Signed in as "+who)),
			html.Form(
				html.Method("post"),
				html.Action("/ui/logout"),
				html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Text("Sign out")),
			),
		),
	)
}

func navLinks(active string) gomponents.Node {
	links := make([]gomponents.Node, 0, len(navItems))
	for _, item := range navItems {
		className := ""
		if item.Key == active {
			className = "active"
		}
		links = append(links, html.A(html.Href(item.Href), html.Class(className), gomponents.Text(item.Label)))
	}
	return gomponents.Group(links)
}

func appPage(title, active string, principal domain.ContextPrincipal, body ...gomponents.Node) gomponents.Node {
	return html.HTML(
		html.Lang("en"),
		pageHead(title, true),
		html.Body(
			html.Main(
				html.Class("layout"),
				topbar(principal),
				html.Nav(html.Class("nav"), navLinks(active)),
				html.H1(html.Class("page-title"), gomponents.Text(title)),
				gomponents.Group(body),
			),
		),
	)
}

// errorPage is a bare page without the topbar or nav: it also serves
// requests that failed authentication.
func errorPage(title, message string) gomponents.Node {
	return html.HTML(
		html.Lang("en"),
		pageHead(title, false),
		html.Body(
			html.Main(
				html.Class("layout"),
				html.Div(
					html.Class("card"),
					html.H1(html.Class("page-title"), gomponents.Text(title)),
					html.P(html.Class("muted"), gomponents.Text(message)),
					html.A(html.Href("/ui"), gomponents.Text("Back to the overview")),
				),
			),
		),
	)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(time.RFC3339)
}

func formatTimePtr(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return formatTime(*ts)
}

func stringPtr(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "-"
	}
	return *v
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// containsExpr builds the datastar expression behind the quick filter:
// a row stays visible while the signal q is empty or a substring of the
// row's search text.
func containsExpr(value string) string {
	return fmt.Sprintf("$q === '' || %s.includes($q.toLowerCase())",
		strconv.Quote(strings.ToLower(value)))
}

func paginationCard(basePath string, page domain.PageRequest, total int64) gomponents.Node {
	children := []gomponents.Node{html.Class("card")}
	if next := domain.NextPageToken(page.Offset(), page.Limit(), total); next != "" {
		href := fmt.Sprintf("%s?max_results=%d&page_token=%s", basePath, page.Limit(), next)
		children = append(children,
			html.P(html.Class("muted"), gomponents.Text(fmt.Sprintf("Showing up to %d of %d entries.", page.Limit(), total))),
			html.A(html.Href(href), gomponents.Text("Next page ->")),
		)
	} else {
		children = append(children,
			html.P(html.Class("muted"), gomponents.Text(fmt.Sprintf("Showing %d of %d entries.", min(page.Limit(), int(total)), total))),
		)
	}
	return html.Div(children...)
}

func filterInput(placeholder string) gomponents.Node {
	return html.Div(
		html.Class("card"),
		html.Label(gomponents.Text("Quick filter")),
		html.Input(html.Type("text"), html.Placeholder(placeholder), data.Bind("q")),
	)
}
