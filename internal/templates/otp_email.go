package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

type OtpEmailData struct {
	Code          string
	ExpiryMinutes int
}

const otpHTML = `
<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8"/>
  <title>Your 6ix verification code</title>
  <style>
    body {
      margin: 0;
      padding: 0;
      font-family: Arial, sans-serif;
      background-color: #0b0b0f;
      color: #e8e8ee;
    }
    .email-container {
      width: 100%;
      max-width: 520px;
      margin: 0 auto;
      background-color: #15151c;
      border-radius: 8px;
      overflow: hidden;
    }
    .header {
      padding: 24px;
      text-align: center;
      border-bottom: 1px solid #23232e;
    }
    .header h1 {
      margin: 0;
      font-size: 22px;
      color: #ffffff;
    }
    .content {
      padding: 24px;
      text-align: center;
    }
    .code {
      display: inline-block;
      padding: 14px 28px;
      margin: 16px 0;
      background-color: #23232e;
      border-radius: 6px;
      font-size: 32px;
      letter-spacing: 10px;
      font-weight: bold;
      color: #ffffff;
    }
    .footer {
      font-size: 12px;
      color: #7a7a8a;
      text-align: center;
      padding: 12px 24px 24px;
    }
  </style>
</head>
<body>
  <table class="email-container" role="presentation" cellspacing="0" cellpadding="0">
    <tr>
      <td>
        <div class="header">
          <h1>6ix</h1>
        </div>
        <div class="content">
          <p>Use this code to sign in:</p>
          <div class="code">{{.Code}}</div>
          <p>The code expires in {{.ExpiryMinutes}} minutes and can be used once.</p>
        </div>
        <div class="footer">
          <p>If you did not request this code you can safely ignore this email.</p>
        </div>
      </td>
    </tr>
  </table>
</body>
</html>
`

var otpTemplate = template.Must(template.New("otp_email").Parse(otpHTML))

// RenderOtpEmail renders the HTML body for a verification code email.
func RenderOtpEmail(data OtpEmailData) (string, error) {
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed rendering otp email: %w", err)
	}
	return buf.String(), nil
}

// OtpEmailPlainText is the text/plain alternative for the same email.
func OtpEmailPlainText(data OtpEmailData) string {
	return fmt.Sprintf("Your 6ix verification code is %s. It expires in %d minutes and can be used once.", data.Code, data.ExpiryMinutes)
}
