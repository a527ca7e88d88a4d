package mailer

import (
	"fmt"
	"html"
	"strings"
)

func contactEmailHTML(m ContactMessage) string {
	var b strings.Builder
	b.WriteString("<div style=\"font-family:Arial,sans-serif;max-width:600px\">")
	b.WriteString("<h2 style=\"color:#333\">New contact message</h2>")
	fmt.Fprintf(&b, "<p><strong>From:</strong> %s &lt;%s&gt;</p>", html.EscapeString(m.Name), html.EscapeString(m.Email))
	fmt.Fprintf(&b, "<p><strong>Subject:</strong> %s</p>", html.EscapeString(m.Subject))
	fmt.Fprintf(&b, "<div style=\"background:#f5f5f5;padding:16px;border-radius:8px;white-space:pre-wrap\">%s</div>", html.EscapeString(m.Message))
	b.WriteString("</div>")
	return b.String()
}

func freebieEmailHTML(product string, info Freebie, siteURL, siteName string) string {
	var b strings.Builder
	b.WriteString("<div style=\"font-family:Arial,sans-serif;max-width:600px;margin:0 auto\">")
	fmt.Fprintf(&b, "<h1 style=\"color:#e91e63\">Your freebie from %s!</h1>", html.EscapeString(siteName))
	fmt.Fprintf(&b, "<p>Thanks for grabbing <strong>%s</strong>.</p>", html.EscapeString(product))
	if info.Desc != "" {
		fmt.Fprintf(&b, "<p style=\"color:#555\">%s</p>", html.EscapeString(info.Desc))
	}
	fmt.Fprintf(&b, "<p style=\"text-align:center;margin:32px 0\"><a href=\"%s\" style=\"background:#e91e63;color:#fff;padding:14px 28px;border-radius:8px;text-decoration:none;font-weight:bold\">Download now</a></p>", html.EscapeString(info.Link))
	fmt.Fprintf(&b, "<p style=\"color:#888;font-size:13px\">If the button doesn't work, copy this link:<br>%s</p>", html.EscapeString(info.Link))
	fmt.Fprintf(&b, "<hr style=\"border:none;border-top:1px solid #eee\"><p style=\"color:#aaa;font-size:12px\">More free printables at <a href=\"%s\">%s</a></p>", html.EscapeString(siteURL), html.EscapeString(siteName))
	b.WriteString("</div>")
	return b.String()
}
