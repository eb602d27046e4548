package sink_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melown/libhttp/core/sink"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want sink.FailureKind
	}{
		{
			name: "not_modified_sentinel",
			err:  sink.ErrNotModified,
			want: sink.KindNotModified,
		},
		{
			name: "wrapped_not_modified",
			err:  fmt.Errorf("etag matched: %w", sink.ErrNotModified),
			want: sink.KindNotModified,
		},
		{
			name: "client_aborted_sentinel",
			err:  sink.ErrClientAborted,
			want: sink.KindClientAborted,
		},
		{
			name: "wrapped_client_aborted",
			err:  fmt.Errorf("streaming stopped: %w", sink.ErrClientAborted),
			want: sink.KindClientAborted,
		},
		{
			name: "contract_violation",
			err:  &sink.ContractViolation{Committed: "content", Rejected: "error"},
			want: sink.KindContractViolation,
		},
		{
			name: "arbitrary_error",
			err:  errors.New("database unavailable"),
			want: sink.KindApplication,
		},
		{
			name: "nil_error",
			err:  nil,
			want: sink.KindApplication,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sink.Classify(tt.err))
		})
	}
}

func TestContractViolation(t *testing.T) {
	t.Parallel()

	t.Run("unwraps_to_sentinel", func(t *testing.T) {
		t.Parallel()

		err := &sink.ContractViolation{Committed: "content", Rejected: "see_other"}
		require.ErrorIs(t, err, sink.ErrContractViolation)
	})

	t.Run("names_both_operations", func(t *testing.T) {
		t.Parallel()

		err := &sink.ContractViolation{Committed: "content", Rejected: "see_other"}
		assert.Contains(t, err.Error(), "content")
		assert.Contains(t, err.Error(), "see_other")
	})
}

func TestFailureKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "not_modified", sink.KindNotModified.String())
	assert.Equal(t, "client_aborted", sink.KindClientAborted.String())
	assert.Equal(t, "contract_violation", sink.KindContractViolation.String())
	assert.Equal(t, "application_error", sink.KindApplication.String())
}
