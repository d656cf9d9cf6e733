package ui

import (
	"errors"

	"github.com/techsalle/inventory/client"
)

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeValidation
	NoticeNotFound
	NoticeRetry
	NoticeError
)

// Notice is the single message line a screen shows after an action.
type Notice struct {
	Kind NoticeKind
	Text string
}

const (
	retryText       = "Could not reach the server. Check your connection and try again."
	serverErrorText = "Something went wrong on the server. Please try again later."
)

// NoticeFor turns an error from a form or the API into what the user sees.
// Validation and conflict messages are shown verbatim.
func NoticeFor(err error) Notice {
	var formErr *FormError
	if errors.As(err, &formErr) {
		return Notice{Kind: NoticeValidation, Text: formErr.Message}
	}

	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		return Notice{Kind: NoticeError, Text: serverErrorText}
	}
	switch apiErr.Kind {
	case client.KindValidation:
		return Notice{Kind: NoticeValidation, Text: apiErr.Message}
	case client.KindNotFound:
		text := apiErr.Message
		if text == "" || text == "Not Found" {
			text = "Not found"
		}
		return Notice{Kind: NoticeNotFound, Text: text}
	case client.KindConnectivity:
		return Notice{Kind: NoticeRetry, Text: retryText}
	default:
		return Notice{Kind: NoticeError, Text: serverErrorText}
	}
}

func success(text string) *Notice {
	return &Notice{Kind: NoticeSuccess, Text: text}
}

func failure(err error) *Notice {
	n := NoticeFor(err)
	return &n
}
