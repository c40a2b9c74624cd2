/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package store

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/shopspring/decimal"
)

// Kind is the business classification of a failure.
type Kind string

const (
	KindNotFound               Kind = "NOT_FOUND"
	KindDuplicate              Kind = "DUPLICATE"
	KindInvalidInput           Kind = "INVALID_INPUT"
	KindInsufficientFunds      Kind = "INSUFFICIENT_FUNDS"
	KindCardInactive           Kind = "CARD_INACTIVE"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"
	KindForbidden              Kind = "FORBIDDEN"
	KindInternal               Kind = "INTERNAL"
)

// InternalMessage is the only text an unexpected failure exposes.
const InternalMessage = "An unexpected error occurred"

const (
	SideSource      = "source"
	SideDestination = "destination"
)

func newError(message string, kind Kind, category goerrors.Category, code int, metadata map[string]any) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(string(kind))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func NotFound(resource, id string) error {
	return newError(fmt.Sprintf("%s not found with id: %s", resource, id), KindNotFound,
		goerrors.CategoryNotFound, http.StatusNotFound, map[string]any{"resource": resource, "id": id})
}

func Duplicate(message string) error {
	return newError(message, KindDuplicate, goerrors.CategoryConflict, http.StatusConflict, nil)
}

func InvalidInput(message string) error {
	return newError(message, KindInvalidInput, goerrors.CategoryBadInput, http.StatusBadRequest, nil)
}

// InsufficientFunds reports the requested amount against what the source card holds.
func InsufficientFunds(required, available decimal.Decimal) error {
	return newError(
		fmt.Sprintf("Insufficient funds. Required: %s, Available: %s", required.StringFixed(2), available.StringFixed(2)),
		KindInsufficientFunds, goerrors.CategoryOperation, http.StatusUnprocessableEntity,
		map[string]any{"required": required.StringFixed(2), "available": available.StringFixed(2)})
}

// CardInactive names the side of a transfer whose card is not ACTIVE.
func CardInactive(side, status string) error {
	message := "Card is not active"
	switch side {
	case SideSource:
		message = "Source card is not active"
	case SideDestination:
		message = "Destination card is not active"
	}
	return newError(message, KindCardInactive, goerrors.CategoryOperation, http.StatusUnprocessableEntity,
		map[string]any{"side": side, "status": status})
}

func InvalidStateTransition(message, currentStatus string) error {
	return newError(message, KindInvalidStateTransition, goerrors.CategoryConflict, http.StatusConflict,
		map[string]any{"current_status": currentStatus})
}

func Forbidden(message string) error {
	return newError(message, KindForbidden, goerrors.CategoryAuthz, http.StatusForbidden, nil)
}

// Internal hides the cause behind a generic message; callers log the cause.
func Internal() error {
	return newError(InternalMessage, KindInternal, goerrors.CategoryInternal, http.StatusInternalServerError, nil)
}

// KindOf classifies err. Errors outside the taxonomy are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return KindInternal
	}
	switch kind := Kind(rich.TextCode); kind {
	case KindNotFound, KindDuplicate, KindInvalidInput, KindInsufficientFunds,
		KindCardInactive, KindInvalidStateTransition, KindForbidden, KindInternal:
		return kind
	default:
		return KindInternal
	}
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Metadata returns the metadata attached to a classified error, or nil.
func Metadata(err error) map[string]any {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return nil
	}
	return rich.Metadata
}

// Message returns the client-safe message of a classified error.
func Message(err error) string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return InternalMessage
	}
	return rich.Message
}
