package errs

import "net/http"

// errorMap holds the template for every code. Entries without a Status use 400.
var errorMap = map[int]CustomError{
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	ErrEventMalformed:         {Code: ErrEventMalformed, Message: "Malformed event frame."},
	ErrEventPayloadInvalid:    {Code: ErrEventPayloadInvalid, Message: "Invalid payload for event %q."},
	ErrTrackDataMissing:       {Code: ErrTrackDataMissing, Message: "Missing required data."},
	ErrInvalidDate:            {Code: ErrInvalidDate, Message: "Date must be in YYYY-MM-DD format."},
	ErrInvalidDomain:          {Code: ErrInvalidDomain, Message: "Invalid domain."},
	ErrInvalidDuration:        {Code: ErrInvalidDuration, Message: "Duration must be a positive number of milliseconds."},
	ErrInvalidClassification:  {Code: ErrInvalidClassification, Message: "Classification must be productive or unproductive."},
	ErrClassificationNotFound: {Code: ErrClassificationNotFound, Message: "No classification for this domain.", Status: http.StatusNotFound},
	ErrReportExportDisabled:   {Code: ErrReportExportDisabled, Message: "Report export is not configured.", Status: http.StatusServiceUnavailable},

	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrForbidden:          {Code: ErrForbidden, Message: "You cannot access this user's data.", Status: http.StatusForbidden},
	ErrAlreadyLoggedIn:    {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username."},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username is already taken.", Status: http.StatusConflict},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},

	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "Report upload failed. Please try again.", Status: http.StatusBadGateway},
}
