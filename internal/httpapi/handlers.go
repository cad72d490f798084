package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/cravecorner/core/handler"
	"github.com/dmitrymomot/cravecorner/core/response"
	"github.com/dmitrymomot/cravecorner/core/router"
	"github.com/dmitrymomot/cravecorner/core/validator"
	"github.com/dmitrymomot/cravecorner/internal/auth"
	"github.com/dmitrymomot/cravecorner/internal/user"
	"github.com/dmitrymomot/cravecorner/middleware"
)

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *user.Public `json:"user,omitempty"`
}

func ok(message string, u *user.Public) envelope {
	return envelope{Success: true, Message: message, User: u}
}

func (h *Handler) signup(ctx *router.Context) handler.Response {
	var req signupRequest
	if err := h.decode(ctx, &req); err != nil {
		return response.Error(err)
	}
	phone, valid := req.Contact.int64()
	if !valid {
		return response.Error(errors.Join(auth.ErrValidation, validator.ValidationErrors{
			{Field: "contact", Message: "must be a valid phone number"},
		}))
	}

	u, err := h.svc.Register(ctx, auth.RegisterInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		Contact:  phone,
	})
	if err != nil {
		return response.Error(err)
	}
	return response.JSONWithStatus(ok("Account created successfully", &u), http.StatusCreated)
}

func (h *Handler) login(ctx *router.Context) handler.Response {
	var req loginRequest
	if err := h.decode(ctx, &req); err != nil {
		return response.Error(err)
	}

	sess, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return response.Error(err)
	}
	return response.WithCookies(
		response.JSON(ok("Welcome back "+sess.User.Fullname, &sess.User)),
		h.cookies.Attach(sess.Token),
	)
}

func (h *Handler) logout(*router.Context) handler.Response {
	return response.WithCookies(
		response.JSON(ok("Logged out successfully.", nil)),
		h.cookies.Clear(),
	)
}

func (h *Handler) verifyEmail(ctx *router.Context) handler.Response {
	var req verifyEmailRequest
	if err := h.decode(ctx, &req); err != nil {
		return response.Error(err)
	}

	u, err := h.svc.VerifyEmail(ctx, req.value())
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(ok("Email verified successfully.", &u))
}

func (h *Handler) forgotPassword(ctx *router.Context) handler.Response {
	var req forgotPasswordRequest
	if err := h.decode(ctx, &req); err != nil {
		return response.Error(err)
	}

	if err := h.svc.ForgotPassword(ctx, req.Email); err != nil {
		return response.Error(err)
	}
	return response.JSON(ok("Password reset OTP sent to your email", nil))
}

func (h *Handler) resetPassword(ctx *router.Context) handler.Response {
	var req resetPasswordRequest
	if err := h.decode(ctx, &req); err != nil {
		return response.Error(err)
	}

	err := h.svc.ResetPassword(ctx, ctx.Param("token"), req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return response.Error(errResetOTP)
	case err != nil:
		return response.Error(err)
	}
	return response.JSON(ok("Password reset successfully.", nil))
}

func (h *Handler) googleAuth(ctx *router.Context) handler.Response {
	var req googleAuthRequest
	if err := h.decode(ctx, &req); err != nil {
		return response.Error(err)
	}

	sess, err := h.svc.FederatedLogin(ctx, req.Token)
	if err != nil {
		return response.Error(err)
	}
	return response.WithCookies(
		response.JSON(ok("Google authentication successful", &sess.User)),
		h.cookies.Attach(sess.Token),
	)
}

func (h *Handler) updateProfile(ctx *router.Context) handler.Response {
	userID, found := middleware.Session[string](ctx)
	if !found {
		return response.Error(auth.ErrUnauthenticated)
	}
	var req updateProfileRequest
	if err := h.decode(ctx, &req); err != nil {
		return response.Error(err)
	}

	u, err := h.svc.UpdateProfile(ctx, userID, auth.ProfileInput{
		Fullname:       req.Fullname,
		Email:          req.Email,
		Address:        req.Address,
		City:           req.City,
		Country:        req.Country,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(ok("Profile updated successfully", &u))
}

func (h *Handler) checkAuth(ctx *router.Context) handler.Response {
	token, err := h.token(ctx.Request())
	if err != nil {
		return response.Error(auth.ErrUnauthenticated)
	}

	u, err := h.svc.CheckAuth(ctx, token)
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(envelope{Success: true, User: &u})
}
