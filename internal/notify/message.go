// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/olegiv/folio-go/internal/model"
)

const dateLayout = "Jan 2, 2006 15:04 MST"

var htmlBody = htmltemplate.Must(htmltemplate.New("contact").Funcs(htmltemplate.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`<h2>New Contact Form Submission</h2>
<p><strong>Date:</strong> {{.Message.CreatedAt.Format .Layout}}</p>
<p><strong>From:</strong> {{.Message.Name}} ({{.Message.Email}})</p>
<p><strong>Subject:</strong> {{.Message.Subject}}</p>
{{with .Meta.Country}}<p><strong>Country:</strong> {{.}}</p>{{end}}
{{with .Meta.Browser}}<p><strong>Browser:</strong> {{.}}{{with $.Meta.OS}} on {{.}}{{end}}</p>{{end}}
<h3>Message:</h3>
<p>{{range $i, $l := lines .Message.Message}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
`))

var textBody = texttemplate.Must(texttemplate.New("contact").Parse(`New Contact Form Submission
---------------------------
Date: {{.Message.CreatedAt.Format .Layout}}
From: {{.Message.Name}} ({{.Message.Email}})
Subject: {{.Message.Subject}}
{{with .Meta.Country}}Country: {{.}}
{{end}}
Message:
{{.Message.Message}}
`))

type mailData struct {
	Message model.Message
	Meta    Meta
	Layout  string
}

// ContactMail builds the owner notification for a contact message.
func ContactMail(from, to string, msg model.Message, meta Meta) (Mail, error) {
	data := mailData{Message: msg, Meta: meta, Layout: dateLayout}

	var html, text strings.Builder
	if err := htmlBody.Execute(&html, data); err != nil {
		return Mail{}, err
	}
	if err := textBody.Execute(&text, data); err != nil {
		return Mail{}, err
	}

	return Mail{
		From:    from,
		To:      to,
		ReplyTo: msg.Email,
		Subject: "New Contact Form Message: " + strings.Join(strings.Fields(msg.Subject), " "),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
