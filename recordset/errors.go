package recordset

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aalemi-dev/kafka-gateway/apperr"
)

// ErrMalformed is wrapped by every framing error: truncated input, negative
// lengths, invalid union indexes or out-of-range versions.
var ErrMalformed = errors.New("malformed record set")

// ErrHeaderNotRead is returned when records are requested before Decode.
var ErrHeaderNotRead = errors.New("record set header not read")

func malformedContent(message string) *apperr.Error {
	return apperr.New(apperr.KindInvalidContent, http.StatusBadRequest, "malformed_content", message)
}

// malformedRecord keeps err as the cause so that a body cut off by a size
// limit can still be told apart from a corrupt one.
func malformedRecord(err error) *apperr.Error {
	return malformedContent(fmt.Sprintf("Malformed record contents: %v", err)).WithCause(err)
}
