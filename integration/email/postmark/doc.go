// Package postmark sends transactional email through the Postmark API.
//
// The client implements email.EmailSender and is the first provider the
// delivery dispatcher tries when POSTMARK_SERVER_TOKEN is set and
// EMAIL_PROVIDER is empty or "postmark". Replies are routed to
// SUPPORT_EMAIL; opens and HTML link clicks are tracked.
//
//	client, err := postmark.New(cfg)
//	if err != nil {
//		return err
//	}
//	err = client.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "jane@example.com",
//		Subject:  "Verify your email",
//		BodyHTML: html,
//		Tag:      "verification",
//	})
package postmark
