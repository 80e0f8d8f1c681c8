// payment-portal/pkg/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	CodeUnknownEnv           = "unknown_env"
	CodeRecipientUnavailable = "recipient_unavailable"
	CodePublishFailed        = "publish_failed"
	CodeCallbackFailed       = "callback_failed"
)

type E struct {
	Code    string
	Message string
	Err     error
}

func (e E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e E) Unwrap() error { return e.Err }

func Wrap(code, msg string, err error) error {
	return E{Code: code, Message: msg, Err: err}
}

// Code returns the code of the first E in err's chain, or "" if there is none.
func Code(err error) string {
	var e E
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}
