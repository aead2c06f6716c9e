package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("loading: %w", NewValidationError("from", "05/01", "bad date"))

	assert.True(t, Is(err, ErrInputValidation))

	var ve *ValidationError
	assert.True(t, As(err, &ve))
	assert.Equal(t, "from", ve.Field)
}

func TestDataError_Unwrap(t *testing.T) {
	err := NewDataError("statement", "pnl.csv", "parse failed", ErrUnsupportedFormat)

	assert.True(t, Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "pnl.csv")
	assert.Equal(t, "data error [statement] x: empty", NewDataError("statement", "x", "empty", nil).Error())
}

func TestParseError(t *testing.T) {
	err := NewParseError(3, "gross_pnl", "abc", ErrUnparsableNumber)

	assert.Equal(t, "row 3: gross_pnl (abc): unparsable number", err.Error())
	assert.Equal(t, "row 4: symbol: missing field", NewParseError(4, "symbol", nil, ErrMissingField).Error())
	assert.True(t, Is(err, ErrUnparsableNumber))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))

	err := Wrapf(ErrDataNotFound, "import %s", "abc")
	assert.Equal(t, "import abc: data not found", err.Error())
	assert.True(t, Is(err, ErrDataNotFound))
}
