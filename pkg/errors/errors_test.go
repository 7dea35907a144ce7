/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "code and message",
			err:  New(ErrCodeNotFound, "cell 3 not found"),
			want: "[NOT_FOUND] cell 3 not found",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeCommandFailed, "sysstat failed", errors.New("exit 1")),
			want: "[COMMAND_FAILED] sysstat failed: exit 1",
		},
		{
			name: "with sorted context",
			err: WrapWithContext(ErrCodeMismatch, "vip differs", nil, map[string]any{
				"want": "10.0.0.2",
				"got":  "10.0.0.1",
			}),
			want: "[MISMATCH] vip differs (got=10.0.0.1, want=10.0.0.2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStructuredError_IsAndAs(t *testing.T) {
	sentinel := New(ErrCodeUnexpectedOutput, "")
	err := fmt.Errorf("failed to parse hwstat: %w", Wrap(ErrCodeUnexpectedOutput, "no header", nil))

	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, errors.Is(err, New(ErrCodeTimeout, "")))

	var se *StructuredError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, ErrCodeUnexpectedOutput, se.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeTimeout, CodeOf(fmt.Errorf("wrapped: %w", New(ErrCodeTimeout, "slow"))))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, ErrCodeInternal, CodeOf(nil))
}

func TestHasCode(t *testing.T) {
	inner := New(ErrCodeTimeout, "cell did not come back")
	outer := Wrap(ErrCodeCommandFailed, "reboot", inner)

	assert.True(t, HasCode(outer, ErrCodeCommandFailed))
	assert.True(t, HasCode(outer, ErrCodeTimeout))
	assert.False(t, HasCode(outer, ErrCodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeTimeout))
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeMismatch, "x").WithContext("cell", 0)
	assert.Equal(t, 0, err.Context["cell"])
}
