package templates_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cravecorner/core/email/templates"
	"github.com/dmitrymomot/cravecorner/core/email/templates/components"
)

func TestRender(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), components.Layout("Verify",
		components.Header("Verify your email", "One more step"),
		components.Text("Hi <Jane>"),
		components.OTP("123456"),
		nil,
		components.Footer("CraveCorner", components.TextSecondary("Ignore if this wasn't you")),
	))
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>Verify</title>")
	assert.Contains(t, html, "One more step")
	assert.Contains(t, html, "Hi &lt;Jane&gt;")
	assert.NotContains(t, html, "<Jane>")
	assert.Contains(t, html, ">123456</div>")
	assert.Contains(t, html, "Ignore if this wasn&#39;t you")
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	_, err := templates.Render(context.Background(), nil)
	assert.ErrorIs(t, err, templates.ErrRender)

	boom := errors.New("boom")
	_, err = templates.Render(context.Background(), templ.ComponentFunc(func(context.Context, io.Writer) error { return boom }))
	assert.ErrorIs(t, err, templates.ErrRender)
	assert.ErrorIs(t, err, boom)
}

func TestHeader_OmitsEmptySubtitle(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), components.Header("Done", ""))
	require.NoError(t, err)
	assert.NotContains(t, html, "<p")
}
