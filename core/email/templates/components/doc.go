// Package components holds the building blocks for transactional emails.
// Every component escapes its text arguments; only Layout and Footer take
// child components.
//
//	components.Layout("Verify your email",
//		components.Header("Verify your email", ""),
//		components.Text("Use the code below to verify your account."),
//		components.OTP(code),
//		components.Footer("CraveCorner"),
//	)
package components
