package model

import "errors"

// ErrNotEligible сообщение не от ожидаемого вебхука, молча пропускаем.
var ErrNotEligible = errors.New("message is not eligible")

// ErrMisconfigured нет ни канала дампа, ни ветки.
var ErrMisconfigured = errors.New("dump channel is not configured")

var ErrInvalidExpression = errors.New("invalid roll expression")

var ErrIdentityUnavailable = errors.New("relay webhook unavailable")

var ErrTimeout = errors.New("timed out waiting for reply")

var ErrStoreUnavailable = errors.New("store unavailable")

// ErrNotEditable у сообщения нет ссылки на дамп в конце.
var ErrNotEditable = errors.New("message has no dump link and cannot be edited")

var ErrEditInProgress = errors.New("message is already being edited")

// ErrTooLong после подстановки бросков сообщение не влезает в лимит Discord.
var ErrTooLong = errors.New("message is too long after rolling")
