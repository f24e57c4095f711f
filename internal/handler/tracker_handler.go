package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"relayhub/internal/app/tracker"
	"relayhub/internal/pkg/auth/jwt"
	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/req"
	"relayhub/internal/pkg/resp"
)

// UserIDHeader names the tracker user of requests without an identity token.
const UserIDHeader = "X-User-ID"

const maxHeaderUserIDLength = 64

// TrackTimeInput is the body of POST /api/track-time. durationMs must be a JSON
// integer; fractional values and unknown fields are rejected by BindJSON with
// ErrInvalidJSONFormat.
type TrackTimeInput struct {
	Date       string `json:"date"`
	Domain     string `json:"domain"`
	DurationMs *int64 `json:"durationMs"`
}

// ClassificationInput is the body of PUT /api/classifications.
type ClassificationInput struct {
	Domain string `json:"domain" validate:"required,max=253"`
	Type   string `json:"type" validate:"required"`
}

// trackerUserID resolves who a tracker request acts for: the token identity,
// then the X-User-ID header, then the anonymous user.
func trackerUserID(r *http.Request) string {
	if payload := jwt.GetPayloadFromContext(r); payload != nil && payload.ID != "" {
		return payload.ID
	}

	if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" && len(id) <= maxHeaderUserIDLength {
		return id
	}

	return tracker.AnonymousUserID
}

// pathUserID returns the {userId} of the route, rejecting tokens issued to someone else.
func pathUserID(r *http.Request) (string, *errs.CustomError) {
	userID := chi.URLParam(r, "userId")
	if userID == "" || len(userID) > maxHeaderUserIDLength {
		return "", errs.NewError(errs.ErrInvalidParams)
	}

	if payload := jwt.GetPayloadFromContext(r); payload != nil && payload.ID != userID {
		logx.Warn("Analytics access denied: token does not match user.", "token_user", payload.ID, "path_user", userID)
		return "", errs.NewError(errs.ErrForbidden)
	}

	return userID, nil
}

// HandleTrackTime accumulates one time report from the extension.
// A missing durationMs is ErrTrackDataMissing, zero or negative is ErrInvalidDuration.
func HandleTrackTime(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input TrackTimeInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.DurationMs == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrTrackDataMissing))
			return
		}

		userID := trackerUserID(r)

		log, err := deps.Tracker.TrackTime(r.Context(), userID, tracker.Entry{
			Date:       input.Date,
			Domain:     input.Domain,
			DurationMs: *input.DurationMs,
		})
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, log)
	}
}

// HandleAnalytics returns the aggregated analytics of {userId}, optionally for ?date=YYYY-MM-DD.
func HandleAnalytics(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, customErr := pathUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		analytics, err := deps.Tracker.Analytics(r.Context(), userID, r.URL.Query().Get("date"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, analytics)
	}
}

// HandleExportReport uploads the analytics of {userId} and returns a download URL.
func HandleExportReport(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, customErr := pathUserID(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		report, err := deps.Tracker.ExportReport(r.Context(), userID)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, report)
	}
}

// HandleListClassifications returns the caller's effective site classifications.
func HandleListClassifications(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := deps.Tracker.Classifications(r.Context(), trackerUserID(r))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, list)
	}
}

// HandleSetClassification classifies a domain for the caller.
func HandleSetClassification(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ClassificationInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		c, err := deps.Tracker.SetClassification(r.Context(), trackerUserID(r), input.Domain, input.Type)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, c)
	}
}

// HandleRemoveClassification removes the caller's classification of {domain}.
func HandleRemoveClassification(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := chi.URLParam(r, "domain")

		if err := deps.Tracker.RemoveClassification(r.Context(), trackerUserID(r), domain); err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}
