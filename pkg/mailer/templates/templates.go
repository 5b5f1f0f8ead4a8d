package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Welcome is the template name used for the registration welcome mail.
const Welcome = "welcome"

var welcomeHTML = template.Must(template.New(Welcome).Parse(`
<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif;color:#222">
    <h2>Welcome to {{.AppName}}, {{.Name}}!</h2>
    <p>Your account is ready. Browse listings, save the cars you like to your
    favorites, and manage your profile at any time.</p>
    <p style="color:#888;font-size:12px">You received this email because an
    account was registered with {{.Email}}.</p>
  </body>
</html>`))

// Render returns subject, text and HTML bodies for the named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case Welcome:
		var buf bytes.Buffer
		if err = welcomeHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		subject = fmt.Sprintf("Welcome to %v", data["AppName"])
		text = fmt.Sprintf("Welcome to %v, %v! Your account is ready.", data["AppName"], data["Name"])
		return subject, text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
}
