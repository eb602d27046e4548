package sinktest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melown/libhttp/core/listing"
	"github.com/Melown/libhttp/core/sink"
	"github.com/Melown/libhttp/core/sinktest"
	"github.com/Melown/libhttp/core/source"
)

func TestRecorderContent(t *testing.T) {
	t.Parallel()

	t.Run("records_copy", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		fi := sink.FileInfo{ContentType: "text/plain"}
		require.NoError(t, rec.Content([]byte("payload"), fi))

		assert.Equal(t, sinktest.OutcomeContent, rec.Outcome())
		assert.Equal(t, []byte("payload"), rec.Body())
		assert.Equal(t, int64(7), rec.BodyLen())
		assert.Equal(t, fi, rec.FileInfo())
	})

	t.Run("borrow_variant_retains_nothing", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		data := []byte("volatile")
		require.NoError(t, rec.ContentNoCopy(data, sink.FileInfo{}))

		// Invalidate the caller-owned memory; the recorder must not have
		// kept any view of it.
		for i := range data {
			data[i] = 0
		}
		assert.Nil(t, rec.Body())
		assert.Equal(t, int64(8), rec.BodyLen())
	})

	t.Run("empty_buffer_is_zero_length_content", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		require.NoError(t, rec.Content(nil, sink.FileInfo{}))
		assert.Equal(t, sinktest.OutcomeContent, rec.Outcome())
		assert.Zero(t, rec.BodyLen())
	})
}

func TestRecorderSingleTerminalCall(t *testing.T) {
	t.Parallel()

	rec := sinktest.NewRecorder()
	require.NoError(t, rec.Content([]byte("one"), sink.FileInfo{}))

	assert.ErrorIs(t, rec.Content([]byte("two"), sink.FileInfo{}), sink.ErrContractViolation)
	assert.ErrorIs(t, rec.Error(errors.New("late")), sink.ErrContractViolation)
	assert.ErrorIs(t, rec.SeeOther("/elsewhere"), sink.ErrContractViolation)
	assert.ErrorIs(t, rec.Listing(nil), sink.ErrContractViolation)
	assert.ErrorIs(t, rec.NotModified(), sink.ErrContractViolation)

	// The original outcome survives.
	assert.Equal(t, sinktest.OutcomeContent, rec.Outcome())
	assert.Equal(t, []byte("one"), rec.Body())
}

func TestRecorderContentSource(t *testing.T) {
	t.Parallel()

	t.Run("known_length", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		src := source.Bytes([]byte("streamed"), sink.FileInfo{ContentType: "text/plain"})
		require.NoError(t, rec.ContentSource(src))

		assert.Equal(t, sinktest.OutcomeContent, rec.Outcome())
		assert.Equal(t, []byte("streamed"), rec.Body())
		assert.False(t, rec.Chunked())
		assert.True(t, rec.SourceClosed())
		assert.Equal(t, "memory", rec.SourceName())
	})

	t.Run("unknown_length_selects_chunked", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		src := source.Reader(strings.NewReader("no length"), sink.FileInfo{})
		require.NoError(t, rec.ContentSource(src))

		assert.True(t, rec.Chunked())
		assert.Equal(t, []byte("no length"), rec.Body())
	})

	t.Run("aborted_stream", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		rec.Abort()

		src := source.Bytes([]byte("never delivered"), sink.FileInfo{})
		err := rec.ContentSource(src)
		require.ErrorIs(t, err, sink.ErrClientAborted)
		assert.Equal(t, sinktest.OutcomeAborted, rec.Outcome())
		assert.True(t, rec.SourceClosed())
	})

	t.Run("rejected_source_still_closed", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		require.NoError(t, rec.Content([]byte("first"), sink.FileInfo{}))

		src := source.Bytes([]byte("second"), sink.FileInfo{})
		var violation *sink.ContractViolation
		require.ErrorAs(t, rec.ContentSource(src), &violation)
		assert.True(t, rec.SourceClosed())
		assert.Equal(t, []byte("first"), rec.Body())
	})
}

func TestRecorderErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want sinktest.Outcome
	}{
		{name: "application", err: errors.New("boom"), want: sinktest.OutcomeError},
		{name: "not_modified", err: sink.ErrNotModified, want: sinktest.OutcomeNotModified},
		{name: "client_aborted", err: sink.ErrClientAborted, want: sinktest.OutcomeAborted},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := sinktest.NewRecorder()
			require.NoError(t, rec.Error(tt.err))
			assert.Equal(t, tt.want, rec.Outcome())
			assert.ErrorIs(t, rec.Err(), tt.err)
		})
	}
}

func TestRecorderNotModifiedEqualsError(t *testing.T) {
	t.Parallel()

	viaMethod := sinktest.NewRecorder()
	require.NoError(t, viaMethod.NotModified())

	viaError := sinktest.NewRecorder()
	require.NoError(t, viaError.Error(sink.ErrNotModified))

	assert.Equal(t, viaError.Outcome(), viaMethod.Outcome())
	assert.Equal(t, viaError.Body(), viaMethod.Body())
	assert.Equal(t, viaError.BodyLen(), viaMethod.BodyLen())
}

func TestRecorderListing(t *testing.T) {
	t.Parallel()

	rec := sinktest.NewRecorder()
	require.NoError(t, rec.Listing(listing.Listing{
		{Name: "b", Kind: listing.File},
		{Name: "a", Kind: listing.Dir},
		{Name: "c", Kind: listing.Dir},
	}))

	assert.Equal(t, sinktest.OutcomeListing, rec.Outcome())
	assert.Equal(t, listing.Listing{
		{Name: "a", Kind: listing.Dir},
		{Name: "c", Kind: listing.Dir},
		{Name: "b", Kind: listing.File},
	}, rec.Entries())
}

func TestRecorderAbortObservation(t *testing.T) {
	t.Parallel()

	t.Run("check_before_fire_returns_nil", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		require.NoError(t, rec.CheckAborted())
	})

	t.Run("check_after_fire_raises", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		rec.Abort()
		require.ErrorIs(t, rec.CheckAborted(), sink.ErrClientAborted)
	})

	t.Run("callback_and_poll_share_signal", func(t *testing.T) {
		t.Parallel()

		rec := sinktest.NewRecorder()
		var fired bool
		rec.SetAborter(func() { fired = true })
		rec.Abort()

		assert.True(t, fired)
		require.ErrorIs(t, rec.CheckAborted(), sink.ErrClientAborted)
	})
}

func TestRecorderRedirect(t *testing.T) {
	t.Parallel()

	rec := sinktest.NewRecorder()
	require.NoError(t, rec.SeeOther("https://example.com/moved"))
	assert.Equal(t, sinktest.OutcomeRedirect, rec.Outcome())
	assert.Equal(t, "https://example.com/moved", rec.RedirectURL())
}
