package handler

import (
	"errors"
	"net/http"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"relayhub/internal/app/tracker"
	"relayhub/internal/pkg/auth/jwt"
	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/randx"
	"relayhub/internal/pkg/req"
	"relayhub/internal/pkg/resp"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{4,20}$`)

const (
	minPasswordLength = 6
	maxPasswordLength = 50
)

// CredentialsInput is the body of register and login.
type CredentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func issueToken(w http.ResponseWriter, r *http.Request, deps *AppDeps, payload *jwt.Payload) {
	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.IdentityExpiration)
	if err != nil {
		logx.Error(err, "jwt generation failed", "user_id", payload.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":       payload.ID,
			"username": payload.Username,
			"userType": payload.UserType,
		},
	})
}

// HandleRegister creates an account with a username and password.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil && payload.UserType == jwt.UserTypeRegistered {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < minPasswordLength || passwordLen > maxPasswordLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		user, err := deps.Accounts.CreateUser(r.Context(), input.Username, string(hashedPassword))
		if err != nil {
			if errors.Is(err, tracker.ErrUserExists) {
				logx.Warn("registration conflict: username already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("User registered", "user_id", user.ID, "username", user.Username)

		issueToken(w, r, deps, &jwt.Payload{
			ID:       user.ID,
			Username: user.Username,
			UserType: jwt.UserTypeRegistered,
		})
	}
}

// HandleLogin verifies user credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil && payload.UserType == jwt.UserTypeRegistered {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Accounts.UserByUsername(r.Context(), input.Username)
		if err != nil {
			if !errors.Is(err, tracker.ErrNotFound) {
				logx.Error(err, "login: user fetch failed", "username", input.Username)
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		issueToken(w, r, deps, &jwt.Payload{
			ID:       user.ID,
			Username: user.Username,
			UserType: jwt.UserTypeRegistered,
		})
	}
}

// HandleGuest issues a guest identity. A caller that already holds one gets it renewed.
func HandleGuest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			if payload.UserType == jwt.UserTypeRegistered {
				resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
				return
			}
			if randx.IsValidGuestID(payload.ID) {
				issueToken(w, r, deps, &jwt.Payload{ID: payload.ID, UserType: jwt.UserTypeGuest})
				return
			}
		}

		guestID, err := randx.GuestID()
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		issueToken(w, r, deps, &jwt.Payload{ID: guestID, UserType: jwt.UserTypeGuest})
	}
}
