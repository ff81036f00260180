package email

import (
	"fmt"
	"html/template"
	"strings"
)

const (
	templateVerification = "verification"
	templateWelcome      = "welcome"
	templateReset        = "password_reset"
	templateChanged      = "password_changed"
)

type templateData struct {
	Name string
	Link string
}

// TemplateSet holds the parsed HTML bodies for the four transactional
// message kinds.
type TemplateSet struct {
	templates map[string]*template.Template
}

func NewTemplateSet() (*TemplateSet, error) {
	sources := map[string]string{
		templateVerification: verificationHTML,
		templateWelcome:      welcomeHTML,
		templateReset:        resetHTML,
		templateChanged:      changedHTML,
	}

	set := &TemplateSet{templates: make(map[string]*template.Template, len(sources))}
	for name, src := range sources {
		tpl, err := template.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		set.templates[name] = tpl
	}

	return set, nil
}

func (ts *TemplateSet) Render(name string, data templateData) (string, error) {
	tpl, ok := ts.templates[name]
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

const verificationHTML = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Hi {{.Name}},</h2>
  <p>Thanks for signing up. Please confirm your email address to activate your account.</p>
  <p><a href="{{.Link}}" style="background: #2d6cdf; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Verify my account</a></p>
  <p>The link expires in 24 hours. If you did not create this account, you can ignore this message.</p>
</body>
</html>`

const welcomeHTML = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Your email has been verified and your account is ready to use.</p>
</body>
</html>`

const resetHTML = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Hi {{.Name}},</h2>
  <p>We received a request to reset your password. Use the link below to choose a new one.</p>
  <p><a href="{{.Link}}" style="background: #2d6cdf; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Reset my password</a></p>
  <p>The link expires in 1 hour. If you did not request a reset, no action is needed.</p>
</body>
</html>`

const changedHTML = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Hi {{.Name}},</h2>
  <p>Your password was just changed. If this was you, no action is needed.</p>
  <p>If you did not change your password, please reset it immediately and contact support.</p>
</body>
</html>`
