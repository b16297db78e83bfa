// Package status models HTTP response status codes as a closed set of
// named constants plus an escape value for any other numeric code.
//
// Classification helpers (IsSuccess, IsClientError, ...) look only at the
// numeric value, so a custom 201 classifies exactly like Created.
package status

import (
	"strconv"
)

// Code is an HTTP status code. Named constants cover the standard codes;
// any other value is a custom code.
type Code int

// Informational 1xx
const (
	Continue           Code = 100
	SwitchingProtocols Code = 101
	Processing         Code = 102
	EarlyHints         Code = 103
)

// Success 2xx
const (
	OK                          Code = 200
	Created                     Code = 201
	Accepted                    Code = 202
	NonAuthoritativeInformation Code = 203
	NoContent                   Code = 204
	ResetContent                Code = 205
	PartialContent              Code = 206
	MultiStatus                 Code = 207
	AlreadyReported             Code = 208
	IMUsed                      Code = 226
)

// Redirection 3xx
const (
	MultipleChoices   Code = 300
	MovedPermanently  Code = 301
	Found             Code = 302
	SeeOther          Code = 303
	NotModified       Code = 304
	UseProxy          Code = 305
	TemporaryRedirect Code = 307
	PermanentRedirect Code = 308
)

// Client errors 4xx
const (
	BadRequest                  Code = 400
	Unauthorized                Code = 401
	PaymentRequired             Code = 402
	Forbidden                   Code = 403
	NotFound                    Code = 404
	MethodNotAllowed            Code = 405
	NotAcceptable               Code = 406
	ProxyAuthenticationRequired Code = 407
	RequestTimeout              Code = 408
	Conflict                    Code = 409
	Gone                        Code = 410
	LengthRequired              Code = 411
	PreconditionFailed          Code = 412
	PayloadTooLarge             Code = 413
	URITooLong                  Code = 414
	UnsupportedMediaType        Code = 415
	RangeNotSatisfiable         Code = 416
	ExpectationFailed           Code = 417
	ImATeapot                   Code = 418
	MisdirectedRequest          Code = 421
	UnprocessableEntity         Code = 422
	Locked                      Code = 423
	FailedDependency            Code = 424
	TooEarly                    Code = 425
	UpgradeRequired             Code = 426
	PreconditionRequired        Code = 428
	TooManyRequests             Code = 429
	RequestHeaderFieldsTooLarge Code = 431
	UnavailableForLegalReasons  Code = 451
)

// Server errors 5xx
const (
	InternalServerError           Code = 500
	NotImplemented                Code = 501
	BadGateway                    Code = 502
	ServiceUnavailable            Code = 503
	GatewayTimeout                Code = 504
	HTTPVersionNotSupported       Code = 505
	VariantAlsoNegotiates         Code = 506
	InsufficientStorage           Code = 507
	LoopDetected                  Code = 508
	NotExtended                   Code = 510
	NetworkAuthenticationRequired Code = 511
)

// customText is reported by Text for codes outside the named set.
const customText = "Custom"

var names = map[Code]string{
	Continue:           "Continue",
	SwitchingProtocols: "Switching Protocols",
	Processing:         "Processing",
	EarlyHints:         "Early Hints",

	OK:                          "OK",
	Created:                     "Created",
	Accepted:                    "Accepted",
	NonAuthoritativeInformation: "Non-Authoritative Information",
	NoContent:                   "No Content",
	ResetContent:                "Reset Content",
	PartialContent:              "Partial Content",
	MultiStatus:                 "Multi-Status",
	AlreadyReported:             "Already Reported",
	IMUsed:                      "IM Used",

	MultipleChoices:   "Multiple Choices",
	MovedPermanently:  "Moved Permanently",
	Found:             "Found",
	SeeOther:          "See Other",
	NotModified:       "Not Modified",
	UseProxy:          "Use Proxy",
	TemporaryRedirect: "Temporary Redirect",
	PermanentRedirect: "Permanent Redirect",

	BadRequest:                  "Bad Request",
	Unauthorized:                "Unauthorized",
	PaymentRequired:             "Payment Required",
	Forbidden:                   "Forbidden",
	NotFound:                    "Not Found",
	MethodNotAllowed:            "Method Not Allowed",
	NotAcceptable:               "Not Acceptable",
	ProxyAuthenticationRequired: "Proxy Authentication Required",
	RequestTimeout:              "Request Timeout",
	Conflict:                    "Conflict",
	Gone:                        "Gone",
	LengthRequired:              "Length Required",
	PreconditionFailed:          "Precondition Failed",
	PayloadTooLarge:             "Payload Too Large",
	URITooLong:                  "URI Too Long",
	UnsupportedMediaType:        "Unsupported Media Type",
	RangeNotSatisfiable:         "Range Not Satisfiable",
	ExpectationFailed:           "Expectation Failed",
	ImATeapot:                   "I'm a teapot",
	MisdirectedRequest:          "Misdirected Request",
	UnprocessableEntity:         "Unprocessable Entity",
	Locked:                      "Locked",
	FailedDependency:            "Failed Dependency",
	TooEarly:                    "Too Early",
	UpgradeRequired:             "Upgrade Required",
	PreconditionRequired:        "Precondition Required",
	TooManyRequests:             "Too Many Requests",
	RequestHeaderFieldsTooLarge: "Request Header Fields Too Large",
	UnavailableForLegalReasons:  "Unavailable For Legal Reasons",

	InternalServerError:           "Internal Server Error",
	NotImplemented:                "Not Implemented",
	BadGateway:                    "Bad Gateway",
	ServiceUnavailable:            "Service Unavailable",
	GatewayTimeout:                "Gateway Timeout",
	HTTPVersionNotSupported:       "HTTP Version Not Supported",
	VariantAlsoNegotiates:         "Variant Also Negotiates",
	InsufficientStorage:           "Insufficient Storage",
	LoopDetected:                  "Loop Detected",
	NotExtended:                   "Not Extended",
	NetworkAuthenticationRequired: "Network Authentication Required",
}

// FromInt converts a numeric status code into a Code. It never fails: values
// outside the named set become custom codes carrying the same number.
func FromInt(code int) Code {
	return Code(code)
}

// Custom returns the escape value for an arbitrary numeric code.
func Custom(code int) Code {
	return Code(code)
}

// Int returns the numeric value of the code.
func (c Code) Int() int {
	return int(c)
}

// IsStandard reports whether the code is one of the named constants.
func (c Code) IsStandard() bool {
	_, ok := names[c]
	return ok
}

// IsCustom reports whether the code falls outside the named set.
func (c Code) IsCustom() bool {
	return !c.IsStandard()
}

// Text returns the reason phrase, or "Custom" for codes outside the named set.
func (c Code) Text() string {
	if name, ok := names[c]; ok {
		return name
	}
	return customText
}

// String renders the code as "<number> <reason>", e.g. "418 I'm a teapot".
func (c Code) String() string {
	return strconv.Itoa(int(c)) + " " + c.Text()
}

// IsInformational reports whether the code is 1xx.
func (c Code) IsInformational() bool {
	return c >= 100 && c < 200
}

// IsSuccess reports whether the code is 2xx.
func (c Code) IsSuccess() bool {
	return c >= 200 && c < 300
}

// IsRedirection reports whether the code is 3xx.
func (c Code) IsRedirection() bool {
	return c >= 300 && c < 400
}

// IsClientError reports whether the code is 4xx.
func (c Code) IsClientError() bool {
	return c >= 400 && c < 500
}

// IsServerError reports whether the code is 5xx.
func (c Code) IsServerError() bool {
	return c >= 500 && c < 600
}

// IsError reports whether the code is 4xx or 5xx.
func (c Code) IsError() bool {
	return c.IsClientError() || c.IsServerError()
}
