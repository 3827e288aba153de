package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderDispatchSummaryEmail generates branded HTML for the ops summary email
// sent after a dispatch run that did not complete cleanly. bodyContent is
// plain text that gets HTML-escaped and has newlines converted to <br> tags.
func RenderDispatchSummaryEmail(subject, bodyContent string) string {
	escaped := html.EscapeString(bodyContent)
	htmlBody := strings.ReplaceAll(escaped, "\n", "<br>")
	safeSubject := html.EscapeString(subject)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #fdf8f3; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #f9a8d4 0%%, #93c5fd 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #1f2937; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #374151; line-height: 1.6; font-size: 15px; }
    .footer { padding: 30px; text-align: center; color: #9ca3af; font-size: 12px; border-top: 1px solid #f3f4f6; }
    .footer a { color: #93c5fd; text-decoration: none; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>&copy; Minnow Kids | <a href="https://www.minnowkids.com">minnowkids.com</a></p>
      <p>Push operations alert &mdash; not a customer email</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, htmlBody)
}
