/*
Package errs defines the application error codes and the CustomError type.

Codes are shared by the REST responses and the WebSocket `error` event so a
client sees the same number for the same problem on either surface.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained data after the JSON value.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Relay and Tracker Errors
const (
	// ErrEventMalformed indicates a WebSocket frame that is not a valid {event, data} envelope.
	ErrEventMalformed = 2001

	// ErrEventPayloadInvalid indicates an event whose data has the wrong shape for its name.
	ErrEventPayloadInvalid = 2002

	// ErrTrackDataMissing indicates a track-time submission lacking date, domain or duration.
	ErrTrackDataMissing = 2101

	// ErrInvalidDate indicates a date that is not in YYYY-MM-DD form.
	ErrInvalidDate = 2102

	// ErrInvalidDomain indicates a domain that cannot be normalized to a host name.
	ErrInvalidDomain = 2103

	// ErrInvalidDuration indicates a non-positive duration.
	ErrInvalidDuration = 2104

	// ErrInvalidClassification indicates a classification type other than productive/unproductive.
	ErrInvalidClassification = 2105

	// ErrClassificationNotFound indicates removal of a domain that has no classification.
	ErrClassificationNotFound = 2106

	// ErrReportExportDisabled indicates that no object storage is configured.
	ErrReportExportDisabled = 2201
)

// 3xxx: Identity Errors
const (
	// ErrUnauthorized indicates a missing or invalid identity where one is required.
	ErrUnauthorized = 3001

	// ErrForbidden indicates an identity that may not access the requested user's data.
	ErrForbidden = 3002

	// ErrAlreadyLoggedIn indicates a register/login attempt carrying a valid identity token.
	ErrAlreadyLoggedIn = 3101

	// ErrInvalidUsername indicates a username outside the allowed pattern.
	ErrInvalidUsername = 3102

	// ErrInvalidPassword indicates a password outside the allowed length.
	ErrInvalidPassword = 3103

	// ErrUserAlreadyExists indicates a taken username.
	ErrUserAlreadyExists = 3104

	// ErrInvalidCredentials indicates a username/password mismatch.
	ErrInvalidCredentials = 3105
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates the object storage rejected or failed a request.
	ErrFileStorageFailed = 5001
)
