package businessflow

import (
	"errors"
	"fmt"
)

var (
	ErrQRCodeNotFound       = errors.New("qr code not found")
	ErrWebsiteNotFound      = errors.New("website not found")
	ErrWebsiteInactive      = errors.New("website is not active")
	ErrActiveQRCodeExists   = errors.New("website already has an active qr code")
	ErrShortCodeExhausted   = errors.New("could not allocate a unique short code")
	ErrInvalidShortCode     = errors.New("short code has an invalid shape")
	ErrInvalidTargetURL     = errors.New("target url must be an absolute http or https url")
	ErrScanRateLimited      = errors.New("scan rate limit exceeded")
	ErrScanStoreUnavailable = errors.New("scan event could not be persisted")
	ErrBusinessNotFound     = errors.New("business not found")
	ErrBusinessInactive     = errors.New("business account is not active")
)

// BusinessError wraps a sentinel with a stable code and a client-safe message.
type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{Code: code, Message: message, Err: err}
}

func IsQRCodeNotFound(err error) bool {
	return errors.Is(err, ErrQRCodeNotFound)
}

func IsScanRateLimited(err error) bool {
	return errors.Is(err, ErrScanRateLimited)
}

func IsScanStoreUnavailable(err error) bool {
	return errors.Is(err, ErrScanStoreUnavailable)
}

func IsActiveQRCodeExists(err error) bool {
	return errors.Is(err, ErrActiveQRCodeExists)
}

func IsWebsiteNotFound(err error) bool {
	return errors.Is(err, ErrWebsiteNotFound)
}

func IsBusinessNotFound(err error) bool {
	return errors.Is(err, ErrBusinessNotFound)
}

func IsInvalidTargetURL(err error) bool {
	return errors.Is(err, ErrInvalidTargetURL)
}

func IsInvalidShortCode(err error) bool {
	return errors.Is(err, ErrInvalidShortCode)
}

func IsWebsiteInactive(err error) bool {
	return errors.Is(err, ErrWebsiteInactive)
}

func IsBusinessInactive(err error) bool {
	return errors.Is(err, ErrBusinessInactive)
}
