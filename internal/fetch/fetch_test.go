package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listData struct {
	Total int
	Rows  []string
}

type payloadErr struct {
	body map[string]any
	msg  string
}

func (e *payloadErr) Error() string       { return "request failed" }
func (e *payloadErr) Payload() any        { return e.body }
func (e *payloadErr) BodyMessage() string { return e.msg }

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFetcher_SuccessStoresData(t *testing.T) {
	f := New(func(ctx context.Context) (listData, error) {
		return listData{Total: 1, Rows: []string{"a"}}, nil
	})
	defer f.Close()

	f.Mount(context.Background())
	st, err := f.Wait(waitCtx(t))
	require.NoError(t, err)

	assert.False(t, st.Loading)
	assert.False(t, st.Errored)
	assert.True(t, st.Ready())
	assert.Equal(t, listData{Total: 1, Rows: []string{"a"}}, st.Data)
}

func TestFetcher_FailureIsCaptured(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantPayload any
	}{
		{"plain error", errors.New("dial tcp: refused"), nil},
		{"structured body", &payloadErr{body: map[string]any{"message": "Giriş başarısız"}}, map[string]any{"message": "Giriş başarısız"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := New(func(ctx context.Context) (int, error) { return 0, tc.err })
			defer f.Close()

			f.Mount(context.Background())
			st, err := f.Wait(waitCtx(t))
			require.NoError(t, err)

			assert.True(t, st.Errored)
			assert.False(t, st.Loading)
			assert.Same(t, tc.err, st.Err)
			if tc.wantPayload != nil {
				assert.Equal(t, tc.wantPayload, st.ErrorPayload)
			} else {
				assert.Equal(t, tc.err, st.ErrorPayload)
			}
		})
	}
}

func TestFetcher_PanicIsCaptured(t *testing.T) {
	f := New(func(ctx context.Context) (int, error) { panic("boom") })
	defer f.Close()

	f.Mount(context.Background())
	st, err := f.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.True(t, st.Errored)
	assert.Contains(t, st.Err.Error(), "boom")
}

func TestFetcher_LoadingThenLoaded(t *testing.T) {
	f := New(func(ctx context.Context) (listData, error) {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return listData{}, ctx.Err()
		}
		return listData{Total: 3, Rows: []string{"a", "b", "c"}}, nil
	})
	defer f.Close()

	start := time.Now()
	f.Mount(context.Background())

	first := f.State()
	assert.True(t, first.Loading)
	assert.False(t, first.Errored)

	st, err := f.Wait(waitCtx(t))
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.False(t, st.Loading)
	assert.False(t, st.Errored)
	assert.Len(t, st.Data.Rows, 3)
	assert.Equal(t, 3, st.Data.Total)
}

func TestFetcher_RefetchIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	f := New(func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"x", "y"}, nil
	})
	defer f.Close()

	f.Mount(context.Background())
	_, err := f.Wait(waitCtx(t))
	require.NoError(t, err)

	require.True(t, f.Refetch(context.Background()))
	first, err := f.Wait(waitCtx(t))
	require.NoError(t, err)

	require.True(t, f.Refetch(context.Background()))
	second, err := f.Wait(waitCtx(t))
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcher_UpdateComparesDeps(t *testing.T) {
	var calls atomic.Int32
	f := New(func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})
	defer f.Close()

	ctx := context.Background()
	f.Mount(ctx, "users", 1)
	_, _ = f.Wait(waitCtx(t))

	assert.False(t, f.Update(ctx, "users", 1), "same deps must not refetch")
	assert.True(t, f.Update(ctx, "users", 2))
	st, _ := f.Wait(waitCtx(t))

	assert.Equal(t, int32(2), st.Data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetcher_DisabledUntilEnabled(t *testing.T) {
	var calls atomic.Int32
	f := New(func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "secret", nil
	}, WithEnabled(false))
	defer f.Close()

	ctx := context.Background()
	f.Mount(ctx, "roles")
	assert.False(t, f.Update(ctx, "settings"))
	assert.False(t, f.Refetch(ctx))
	assert.False(t, f.State().Loading)
	assert.Equal(t, int32(0), calls.Load())

	f.SetEnabled(ctx, true)
	st, err := f.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "secret", st.Data)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetcher_SupersededResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	f := New(func(ctx context.Context) (string, error) {
		q := ctx.Value(queryKey{}).(string)
		if q == "old" {
			<-release // ignores cancellation on purpose
		}
		return q, nil
	})
	defer f.Close()

	f.Mount(context.WithValue(context.Background(), queryKey{}, "old"), "old")
	f.Update(context.WithValue(context.Background(), queryKey{}, "new"), "new")

	st, err := f.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "new", st.Data)

	close(release)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "new", f.State().Data)
}

type queryKey struct{}

func TestFetcher_NewDispatchCancelsPrevious(t *testing.T) {
	cancelled := make(chan struct{})
	var n atomic.Int32
	f := New(func(ctx context.Context) (int, error) {
		if n.Add(1) == 1 {
			<-ctx.Done()
			close(cancelled)
			return 0, ctx.Err()
		}
		return 2, nil
	})
	defer f.Close()

	f.Mount(context.Background(), 1)
	f.Update(context.Background(), 2)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("first call was not cancelled")
	}
	st, _ := f.Wait(waitCtx(t))
	assert.Equal(t, 2, st.Data)
}

func TestFetcher_CloseCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	stopped := make(chan error, 1)
	f := New(func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		stopped <- ctx.Err()
		return 0, ctx.Err()
	})

	f.Mount(context.Background())
	<-started
	f.Close()

	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("in-flight call not cancelled on Close")
	}
	assert.False(t, f.Refetch(context.Background()))
}

func TestFetcher_Subscribe(t *testing.T) {
	f := New(func(ctx context.Context) (int, error) { return 7, nil })
	defer f.Close()

	ch, unsubscribe := f.Subscribe(4)
	defer unsubscribe()

	f.Mount(context.Background())

	loading := <-ch
	assert.True(t, loading.Loading)
	done := <-ch
	assert.False(t, done.Loading)
	assert.Equal(t, 7, done.Data)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, GenericMessage, ErrorMessage(errors.New("timeout")))
	assert.Equal(t, "Giriş başarısız", ErrorMessage(&payloadErr{msg: "Giriş başarısız"}))
	assert.Equal(t, GenericMessage, ErrorMessage(&payloadErr{body: map[string]any{"code": "X"}}))
	assert.Equal(t, "Yetkisiz", ErrorMessage(fmt.Errorf("list users: %w", &payloadErr{msg: "Yetkisiz"})))
}

func TestSameDeps(t *testing.T) {
	s := []int{1, 2}
	assert.True(t, sameDeps([]any{"a", 1, nil, s}, []any{"a", 1, nil, s}))
	assert.False(t, sameDeps([]any{"a"}, []any{"b"}))
	assert.False(t, sameDeps([]any{1}, []any{int64(1)}))
	assert.False(t, sameDeps([]any{[]int{1}}, []any{[]int{1}}), "distinct slices differ shallowly")
	assert.False(t, sameDeps([]any{1}, []any{1, 2}))
}
