package studyhive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studyhive/studyhive-go/core"
)

const (
	LoginPath              = "/api/auth/login"
	SignupPath             = "/api/auth/signup"
	LogoutPath             = "/api/auth/logout"
	MePath                 = "/api/auth/me"
	VerifyEmailPath        = "/api/auth/verify-email"
	ResendVerificationPath = "/api/auth/resend-verification"
	ForgotPasswordPath     = "/api/auth/forgot-password"
	ResetPasswordPath      = "/api/auth/reset-password"
	ChangePasswordPath     = "/api/auth/change-password"
)

var (
	// ErrMissingTokens is returned by Login and Signup when a 2xx response
	// carries no usable token pair. Nothing is stored in that case.
	ErrMissingTokens = errors.New("auth response carries no token pair")

	ErrInvalidUser = errors.New("invalid user data from server")
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
	// VerificationOTP is only echoed by development backends.
	VerificationOTP string
}

// NeedsVerification reports whether the account still has to confirm its
// email address.
func (r *AuthResult) NeedsVerification() bool {
	return r.User != nil && !r.User.IsVerified
}

type AuthState struct {
	Authenticated     bool
	User              *User
	NeedsVerification bool
}

type authPayload struct {
	AccessToken     string `json:"accessToken"`
	RefreshToken    string `json:"refreshToken"`
	User            *User  `json:"user"`
	VerificationOTP string `json:"verificationOTP"`
}

// The backend sends the token pair at the root, under data, or both.
type authEnvelope struct {
	authPayload
	Data *authPayload `json:"data"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := requireField("email", req.Email); err != nil {
		return nil, err
	}
	if err := requireField("password", req.Password); err != nil {
		return nil, err
	}

	resp, err := c.apiClient.Request().
		Path(LoginPath).
		Body(req).
		WithoutToken().
		Post(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	result, err := c.storeSession(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if result.User == nil {
		user, err := c.Me(ctx)
		if err != nil {
			c.cfg.Logger.WarnContext(ctx, "fetch user after login failed", slog.Any("error", err))
		} else {
			result.User = user
		}
	}
	return result, nil
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	if err := requireField("name", req.Name); err != nil {
		return nil, err
	}
	if err := requireField("email", req.Email); err != nil {
		return nil, err
	}
	if err := requireField("password", req.Password); err != nil {
		return nil, err
	}

	resp, err := c.apiClient.Request().
		Path(SignupPath).
		Body(req).
		WithoutToken().
		Post(ctx)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	result, err := c.storeSession(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return result, nil
}

func (c *Client) storeSession(ctx context.Context, resp *core.Response) (*AuthResult, error) {
	if _, err := core.ParseEnvelope[json.RawMessage](resp.StatusCode, resp.Body); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, ErrMissingTokens
	}

	var env authEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, core.NewResponseParseError(resp.StatusCode, resp.Body, err)
	}

	result := &AuthResult{
		AccessToken:     env.AccessToken,
		RefreshToken:    env.RefreshToken,
		User:            env.User,
		VerificationOTP: env.VerificationOTP,
	}
	if data := env.Data; data != nil {
		if !core.IsValidToken(result.AccessToken) {
			result.AccessToken = data.AccessToken
		}
		if !core.IsValidToken(result.RefreshToken) {
			result.RefreshToken = data.RefreshToken
		}
		if data.User != nil {
			result.User = data.User
		}
		if result.VerificationOTP == "" {
			result.VerificationOTP = data.VerificationOTP
		}
	}

	if !core.IsValidToken(result.AccessToken) || !core.IsValidToken(result.RefreshToken) {
		return nil, ErrMissingTokens
	}

	c.tokens.SetTokens(ctx, result.AccessToken, result.RefreshToken)
	return result, nil
}

// Logout tells the backend to end the session and always clears the local
// tokens, also when that call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.tokens.ClearTokens(context.WithoutCancel(ctx))

	if _, ok := c.tokens.GetAccessToken(ctx); !ok {
		return nil
	}

	resp, err := c.apiClient.Request().Path(LogoutPath).Post(ctx)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if _, err := message(resp, ""); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Me fetches the current user. The user may come back under data.user,
// data, user or the root of the body depending on the backend version.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.apiClient.Request().Path(MePath).Get(ctx)
	if err != nil {
		return nil, err
	}

	env, err := core.ParseEnvelope[json.RawMessage](resp.StatusCode, resp.Body)
	if err != nil {
		return nil, err
	}
	if user := findUser(env.Data); user != nil {
		return user, nil
	}
	if user := findUser(resp.Body); user != nil {
		return user, nil
	}
	return nil, ErrInvalidUser
}

func findUser(raw []byte) *User {
	if len(raw) == 0 {
		return nil
	}

	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User
	}

	var user User
	if err := json.Unmarshal(raw, &user); err == nil && user.ID != "" {
		return &user
	}
	return nil
}

// CheckAuth resolves the session state on startup. Stored tokens count as
// authenticated even when the profile cannot be loaded, unless the refresh
// token turned out to be dead.
func (c *Client) CheckAuth(ctx context.Context) AuthState {
	if !c.tokens.HasTokens(ctx) {
		return AuthState{}
	}

	user, err := c.Me(ctx)
	if err != nil {
		if core.IsSessionExpired(err) {
			return AuthState{}
		}
		c.cfg.Logger.WarnContext(ctx, "fetch user on auth check failed", slog.Any("error", err))
		return AuthState{Authenticated: true}
	}

	return AuthState{
		Authenticated:     true,
		User:              user,
		NeedsVerification: !user.IsVerified,
	}
}

func (c *Client) VerifyEmail(ctx context.Context, otp string) (string, error) {
	if err := requireField("otp", otp); err != nil {
		return "", err
	}
	resp, err := c.apiClient.Request().
		Path(VerifyEmailPath).
		Body(map[string]string{"otp": otp}).
		Post(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Email verified successfully")
}

func (c *Client) ResendVerification(ctx context.Context, email string) (string, error) {
	if err := requireField("email", email); err != nil {
		return "", err
	}
	resp, err := c.apiClient.Request().
		Path(ResendVerificationPath).
		Body(map[string]string{"email": email}).
		WithoutToken().
		Post(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Verification email sent")
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := requireField("email", email); err != nil {
		return "", err
	}
	resp, err := c.apiClient.Request().
		Path(ForgotPasswordPath).
		Body(map[string]string{"email": email}).
		WithoutToken().
		Post(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Password reset email sent")
}

func (c *Client) ResetPassword(ctx context.Context, otp, newPassword string) (string, error) {
	if err := requireField("otp", otp); err != nil {
		return "", err
	}
	if err := requireField("new password", newPassword); err != nil {
		return "", err
	}
	resp, err := c.apiClient.Request().
		Path(ResetPasswordPath).
		Body(map[string]string{"otp": otp, "newPassword": newPassword}).
		WithoutToken().
		Post(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Password reset successfully")
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	if err := requireField("current password", currentPassword); err != nil {
		return "", err
	}
	if err := requireField("new password", newPassword); err != nil {
		return "", err
	}
	resp, err := c.apiClient.Request().
		Path(ChangePasswordPath).
		Body(map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}).
		Post(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Password changed successfully")
}
