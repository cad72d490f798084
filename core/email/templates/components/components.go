package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const (
	bodyStyle   = "margin:0;padding:0;background:#f4f4f5;font-family:Arial,Helvetica,sans-serif;color:#18181b;"
	cardStyle   = "max-width:600px;margin:24px auto;background:#ffffff;border-radius:8px;padding:32px;"
	h1Style     = "margin:0 0 8px;font-size:24px;line-height:32px;color:#ea580c;"
	subStyle    = "margin:0 0 24px;font-size:14px;color:#71717a;"
	textStyle   = "margin:0 0 16px;font-size:16px;line-height:24px;"
	mutedStyle  = "margin:0 0 16px;font-size:13px;line-height:20px;color:#71717a;"
	otpStyle    = "margin:24px 0;padding:16px;text-align:center;font-size:32px;letter-spacing:8px;font-weight:bold;background:#fff7ed;border-radius:6px;"
	footerStyle = "margin-top:32px;padding-top:16px;border-top:1px solid #e4e4e7;font-size:12px;color:#a1a1aa;text-align:center;"
)

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func renderAll(ctx context.Context, w io.Writer, children []templ.Component) error {
	for _, c := range children {
		if c == nil {
			continue
		}
		if err := c.Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// Layout is the HTML document shell. title goes into <title>.
func Layout(title string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1.0">`,
			`<title>`, templ.EscapeString(title), `</title></head>`,
			`<body style="`, bodyStyle, `"><div style="`, cardStyle, `">`,
		); err != nil {
			return err
		}
		if err := renderAll(ctx, w, children); err != nil {
			return err
		}
		return write(w, `</div></body></html>`)
	})
}

// Header renders the main heading. An empty subtitle is omitted.
func Header(title, subtitle string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<h1 style="`, h1Style, `">`, templ.EscapeString(title), `</h1>`); err != nil {
			return err
		}
		if subtitle == "" {
			return nil
		}
		return write(w, `<p style="`, subStyle, `">`, templ.EscapeString(subtitle), `</p>`)
	})
}

// Text renders a paragraph.
func Text(content string) templ.Component {
	return paragraph(textStyle, content)
}

// TextSecondary renders a muted paragraph.
func TextSecondary(content string) templ.Component {
	return paragraph(mutedStyle, content)
}

func paragraph(style, content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, `<p style="`, style, `">`, templ.EscapeString(content), `</p>`)
	})
}

// OTP renders a one-time code in a highlighted block.
func OTP(code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, `<div style="`, otpStyle, `">`, templ.EscapeString(code), `</div>`)
	})
}

// Footer renders the closing block with an escaped caption and optional children.
func Footer(caption string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<div style="`, footerStyle, `">`, templ.EscapeString(caption)); err != nil {
			return err
		}
		if err := renderAll(ctx, w, children); err != nil {
			return err
		}
		return write(w, `</div>`)
	})
}
