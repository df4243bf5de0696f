// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package vnc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeString(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{CodeTransport, "transport"},
		{CodeUnrecognizedProtocolElement, "unrecognized_protocol_element"},
		{CodeNoSupportedAuthenticationMethods, "no_supported_authentication_methods"},
		{CodeAuthenticationFailed, "authentication_failed"},
		{CodeSanityCheck, "sanity_check"},
		{CodeInvalidArgument, "invalid_argument"},
		{ErrorCode(999), "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.code.String())
	}
}

func TestRFBErrorWrapping(t *testing.T) {
	base := errors.New("connection reset")
	err := WrapError("wireCodec.readFull", CodeTransport, "connection read failed", base)

	assert.True(t, IsRFBError(err, CodeTransport))
	assert.False(t, IsRFBError(err, CodeSanityCheck))
	assert.Equal(t, CodeTransport, GetErrorCode(err))
	assert.ErrorIs(t, err, base)
}

func TestWrapErrorNilPassthrough(t *testing.T) {
	assert.Nil(t, WrapError("op", CodeTransport, "msg", nil))
}

func TestGetErrorCodeNonRFBError(t *testing.T) {
	assert.Equal(t, ErrorCode(-1), GetErrorCode(errors.New("plain")))
}
