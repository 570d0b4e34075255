package helpers

import (
	"fmt"
	"html"
	"strings"
)

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return "traveller"
}

func button(url, label string) string {
	return fmt.Sprintf(`<p><a href="%s" style="display:inline-block;padding:12px 24px;background:#55c57a;color:#fff;text-decoration:none;border-radius:5px;font-weight:bold;">%s</a></p>`,
		html.EscapeString(url), label)
}

func BuildSimpleHTML(title, body string) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif; background:#f7f7f7;">
    <table width="100%%" cellpadding="0" cellspacing="0" bgcolor="#f7f7f7">
      <tr>
        <td align="center" style="padding:32px 0;">
          <table width="500" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:8px; box-shadow:0 1px 6px #eee;">
            <tr>
              <td>
                <h2 style="color:#55c57a; margin-top:0;">%s</h2>
                <div style="font-size:16px; color:#222;">%s</div>
                <hr style="margin:32px 0 16px 0; border:0; border-top:1px solid #eee;">
                <div style="font-size:12px; color:#999;">This email was generated automatically. Please do not reply.</div>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, html.EscapeString(title), body)
}

func BuildWelcomeHTML(name, accountURL string) string {
	body := fmt.Sprintf(`
      <p>Hi %s,</p>
      <p>Welcome to Natours, we're glad to have you 🎉</p>
      <p>Upload a profile photo and start exploring our tours.</p>
      %s`, html.EscapeString(firstName(name)), button(accountURL, "Open your account"))
	return BuildSimpleHTML("Welcome to the Natours family!", body)
}

func BuildPasswordResetHTML(name, resetURL string, validMinutes int) string {
	body := fmt.Sprintf(`
      <p>Hi %s,</p>
      <p>Forgot your password? Submit a PATCH request with your new password and passwordConfirm to the link below.</p>
      %s
      <p style="font-size:12px;color:#999;">The link is valid for %d minutes. If you didn't forget your password, please ignore this email.</p>`,
		html.EscapeString(firstName(name)), button(resetURL, "Reset your password"), validMinutes)
	return BuildSimpleHTML("Your password reset token", body)
}
